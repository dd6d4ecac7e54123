// Package reactive is the change-notification substrate tracksync runs on.
//
// It provides three primitives:
//   - Cell: a single mutable value whose reads can be tracked
//   - Sequence: an ordered container that publishes fine-grained change batches
//   - Computation: a derived value that re-evaluates when anything it read changes
//
// DELIVERY MODEL:
//
// Every notification goes through the Runtime's FIFO delivery queue. The queue
// drains synchronously on the calling goroutine, and a delivery never starts
// while another one is still running. Handlers that mutate cells or sequences
// only enqueue further deliveries, which run after the current handler
// returns. Batch defers delivery until the batch function returns, so a group
// of mutations is observed as a unit.
//
// A Runtime is not safe for concurrent use. Everything that shares a Runtime
// must run on one goroutine.
//
// DEPENDENCY TRACKING:
//
// While a Computation evaluates, every tracked read (Cell.Get, Sequence.Items,
// Sequence.Len, Sequence.At, Computation.Value) registers the read source as a
// dependency. Peek reads are never tracked.
package reactive
