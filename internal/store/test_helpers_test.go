package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tracksync/internal/value"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, scenario string) Run {
	return Run{
		ID:            id,
		Scenario:      scenario,
		ScenarioHash:  "test-hash",
		Order:         "preserve-source",
		EngineVersion: "0.1.0",
	}
}

// createTestStep creates a step whose output holds the given ints.
func createTestStep(runID string, seq int64, op string, out ...int64) Step {
	list := value.List{}
	for _, n := range out {
		list = append(list, value.Int(n))
	}
	return Step{
		RunID:  runID,
		Seq:    seq,
		Op:     op,
		Output: list,
		Stats:  value.Record{"resyncs": value.Int(1)},
	}
}

// mustWriteRun writes a run or fails the test.
func mustWriteRun(t *testing.T, s *Store, run Run) {
	t.Helper()
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
}
