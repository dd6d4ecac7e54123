// Package scenario runs transform scenarios described in YAML.
//
// A scenario seeds a source sequence with records, builds a transform from
// CUE expressions (filter, map, sort key), then applies a list of steps to
// the source. After every step the rendered output is recorded in the trace
// and compared with the step's expect clause, if any.
//
//	name: filtered-insert
//	description: inserts land after their nearest included predecessor
//	items:
//	  - {id: a, n: 1}
//	  - {id: b, n: 2}
//	transform:
//	  filter: "x.n >= 2"
//	steps:
//	  - op: insert
//	    index: 1
//	    item: {id: c, n: 4}
//	    expect: [{id: c, n: 4}, {id: b, n: 2}]
//
// Under unordered output, expectations compare as multisets.
//
// Runs can be journaled to a store and compared against golden traces.
package scenario
