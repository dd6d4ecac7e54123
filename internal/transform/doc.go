// Package transform derives an output sequence from a source sequence under a
// configurable mapping, filter and order, and keeps it in sync incrementally.
//
// ARCHITECTURE:
//
// A Transform subscribes once to its source. Every change batch is routed
// through the incremental change processor; paths that have no optimized
// implementation (a source reorder under PreserveSource) or that detect an
// inconsistency fall back to a full resync. After every structural
// synchronization the dependency monitor is re-armed:
//
//   - the filter probe evaluates the filter on every source element
//   - the order probe evaluates the comparator on every adjacent output pair
//
// Both probes run in always-notify mode. When an element's internal data
// changes in a way the filter or comparator can observe, the probe fires and
// the transform resyncs, even though the source's membership and order did
// not change.
//
// ENGINE VIEW:
//
// The transform reconciles against the snapshot carried by the last batch it
// processed, never against the live source. Batches queued behind the one
// being processed are therefore never applied twice.
//
// CRITICAL INVARIANTS (after every completed synchronization):
//
//  1. The output holds exactly one corresponding element for every source
//     element that passes the filter, and nothing else.
//  2. PreserveSource: output order equals the relative source order.
//  3. Custom: the output is sorted by the comparator; ties keep insertion order.
//  4. Unordered: only membership is guaranteed.
//  5. The mapper runs once per element each time it enters the output.
//
// The output sequence belongs to the transform. Mutating it from outside is
// undefined behavior.
package transform
