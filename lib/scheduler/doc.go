// Package scheduler implements the timestamp-ordering (TO) validator. Given
// the data items and transactions of an input and an ordered schedule plan,
// it decides whether the interleaving is acceptable under the basic TO
// protocol and, if not, at which operation it has to be rolled back.
//
// Protocol:
//
//	Every transaction T carries a fixed timestamp T.ts, every data item X
//	carries a read timestamp X.tsRead and a write timestamp X.tsWrite. The
//	operations of a plan are checked strictly in order:
//
//	- read(T, X) is legal iff T.ts >= X.tsWrite. It then sets
//	  X.tsRead = max(X.tsRead, T.ts).
//	- write(T, X) is legal iff T.ts >= X.tsRead and T.ts >= X.tsWrite. It
//	  then sets X.tsWrite = T.ts.
//	- commit is always legal. With CommitNoop (the default) it changes
//	  nothing, with CommitResetsTimestamps it resets every item to 0.
//
//	The first illegal operation stops the evaluation and the verdict is
//	"<id>-ROLLBACK-<position>", where position is the 0-based index of that
//	operation within the plan (commits included). Otherwise the verdict is
//	"<id>-OK". An empty plan is always OK.
//
// Errors:
//
//	A rollback is a normal verdict, not an error. A read or write that names
//	an unknown transaction or data item returns a *model.Error with code
//	model.RetCNotFound and no verdict.
//
// Key Components:
//
//   - Evaluate: the protocol as a plain function over explicitly passed
//     registries. It has no state of its own.
//
//   - IScheduler / NewScheduler: a stateful wrapper owning one set of
//     registries, used by the batch runner (set plan, check, reset).
//
//   - AuditLog: optional per-item trail of every applied read and write,
//     recorded as "<ScheduleId>,<opType>,<position>".
//
// Thread Safety:
//
//	Nothing in this package is safe for concurrent use. A scheduler owns its
//	registries exclusively; inputs processed in parallel need their own
//	scheduler.
//
// Usage Example:
//
//	items := model.NewDataRegistry("A", "B")
//	txs := model.NewTransactionRegistry(model.Transaction{ID: "T1", Ts: 8})
//	s := scheduler.NewScheduler(items, txs, nil)
//
//	_ = s.SetSchedule(plan)
//	verdict, err := s.CheckIfSerializable()
//	if err != nil {
//	    // unknown transaction or item
//	}
//	fmt.Println(verdict) // e.g. S1-OK
//	_ = s.Reset()
package scheduler
