package scenario

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tracksync/internal/value"
)

// TraceSnapshot is the golden form of a trace: op, output and seq per step.
// Hashes and counters are left out so golden files survive engine tuning.
type TraceSnapshot struct {
	Scenario string
	Trace    []TraceEvent
}

// canonical converts the snapshot into a value for canonical JSON encoding.
func (s *TraceSnapshot) canonical() value.Record {
	trace := make(value.List, len(s.Trace))
	for i, ev := range s.Trace {
		trace[i] = value.Record{
			"seq":    value.Int(ev.Seq),
			"op":     value.String(ev.Op),
			"output": ev.Output,
		}
	}
	return value.Record{
		"scenario": value.String(s.Scenario),
		"trace":    trace,
	}
}

// MarshalTrace encodes a result's trace as canonical JSON.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{Scenario: name, Trace: result.Trace}
	return value.MarshalCanonical(snap.canonical())
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func RunWithGolden(t *testing.T, sc *Scenario, opts Options) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), sc, opts)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, sc.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
