// Package processor runs a batch of schedule plans through a scheduler and
// writes the results to a sink.
//
// For every plan, in input order, the processor sets the plan on the
// scheduler, checks it, writes the verdict line and resets the scheduler. The
// first error aborts the whole batch:
//
//   - a failure while setting or checking a plan aborts before its verdict is
//     written
//   - a failure while resetting aborts after its verdict is written
//
// Audit trails are handed to the sink only after all plans were processed
// successfully, one trail per data item known to the scheduler.
//
// Each processor keeps statistics about the plans it processed in a
// github.com/rcrowley/go-metrics registry; see Report.
//
// Usage:
//
//	items, txs := input.Registries()
//	p := processor.NewScheduleProcessor(scheduler.NewScheduler(items, txs, nil))
//	out, err := sink.NewDirSink("out")
//	...
//	defer out.Close()
//	if err := p.Process(input.Plans, out); err != nil {
//		...
//	}
//	fmt.Println(p.Report())
package processor
