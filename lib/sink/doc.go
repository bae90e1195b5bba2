// Package sink contains the destinations a batch run writes its results to.
//
// A sink receives verdict lines ("S1-OK", "S2-ROLLBACK-3") in plan order and,
// once the batch is done, the audit trail of every data item. Two
// implementations exist:
//
//   - DirSink writes <dir>/out.txt and one <dir>/<item>.txt per data item.
//   - MemorySink keeps everything in memory. It is used by the RPC server and
//     by tests.
//
// Sinks are not safe for concurrent use.
package sink
