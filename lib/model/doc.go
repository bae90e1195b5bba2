// Package model contains the value types shared by every part of tsched:
// data items, transactions, operations and schedule plans, plus the two
// registries the scheduler owns while it evaluates a plan.
//
// Entities:
//
//   - DataItem: a named item with the read and write timestamps the
//     timestamp-ordering protocol maintains. Both start at 0.
//
//   - Transaction: a named transaction with a fixed ordering timestamp.
//     Smaller timestamps are logically older.
//
//   - Operation: a read, write or commit issued by a transaction. Commits
//     carry no data item.
//
//   - SchedulePlan: an identifier plus an ordered list of operations, i.e.
//     one candidate interleaving to validate.
//
// Registries:
//
//	DataRegistry and TransactionRegistry keep insertion order and offer
//	lookup by id. A failed lookup returns an *Error with code RetCNotFound,
//	see IsNotFound. The DataRegistry additionally implements the timestamp
//	mutations of the protocol (BumpRead, SetWrite, ResetAll).
//
// Thread Safety:
//
//	Registries are not safe for concurrent use. A registry is owned by
//	exactly one scheduler at a time, inputs that are processed concurrently
//	must use their own registries.
package model
