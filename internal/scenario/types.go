package scenario

import (
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/transform"
	"github.com/roach88/tracksync/internal/value"
)

// TraceEvent is the state of the output after one step.
type TraceEvent struct {
	Seq        int64        `json:"seq"`
	Op         string       `json:"op"`
	Output     value.List   `json:"output"`
	OutputHash string       `json:"output_hash"`
	Stats      value.Record `json:"stats"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// RunID identifies the run in the journal.
	RunID string `json:"run_id"`

	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true if every expectation matched and no step failed.
	Pass bool `json:"pass"`

	// Trace holds one event for the initial state and one per step.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats are the transform counters at the end of the run.
	Stats transform.Stats `json:"stats"`
}

// NewResult creates a new passing result.
func NewResult(runID, scenario string) *Result {
	return &Result{
		RunID:    runID,
		Scenario: scenario,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// JournalSteps converts the trace into journal steps.
func (r *Result) JournalSteps() []store.Step {
	steps := make([]store.Step, len(r.Trace))
	for i, ev := range r.Trace {
		steps[i] = store.Step{
			RunID:      r.RunID,
			Seq:        ev.Seq,
			Op:         ev.Op,
			Output:     ev.Output,
			OutputHash: ev.OutputHash,
			Stats:      ev.Stats,
		}
	}
	return steps
}

// statsRecord flattens transform counters for the trace and journal.
func statsRecord(s transform.Stats) value.Record {
	return value.Record{
		"generation":           value.Int(s.Generation),
		"resyncs":              value.Int(s.Resyncs),
		"incremental_batches":  value.Int(s.IncrementalBatches),
		"reorder_fallbacks":    value.Int(s.ReorderFallbacks),
		"ignored_reorders":     value.Int(s.IgnoredReorders),
		"probe_firings":        value.Int(s.ProbeFirings),
		"mapper_calls":         value.Int(s.MapperCalls),
		"resolution_misses":    value.Int(s.ResolutionMisses),
		"invariant_violations": value.Int(s.InvariantViolations),
	}
}
