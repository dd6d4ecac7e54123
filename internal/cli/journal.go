package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/tracksync/internal/store"
)

// openJournal opens an existing journal. Unlike store.Open it refuses to
// create a new database: trace and replay only read.
func openJournal(f *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, commandError(f, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, commandError(f, ErrCodeStore, "failed to open database", err)
	}
	return st, nil
}

// resolveRun reads runID, or the latest run when runID is empty.
func resolveRun(ctx context.Context, f *OutputFormatter, st *store.Store, runID string) (store.Run, error) {
	var (
		run store.Run
		err error
	)
	if runID == "" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, runID)
	}
	if errors.Is(err, store.ErrNotFound) {
		msg := "no runs in journal"
		if runID != "" {
			msg = fmt.Sprintf("run not found: %s", runID)
		}
		return store.Run{}, commandError(f, ErrCodeNotFound, msg, nil)
	}
	if err != nil {
		return store.Run{}, commandError(f, ErrCodeStore, "failed to read run", err)
	}
	return run, nil
}

// RunInfo is the JSON form of a journal run header.
type RunInfo struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	Scenario      string `json:"scenario"`
	ScenarioHash  string `json:"scenario_hash"`
	Order         string `json:"order"`
	EngineVersion string `json:"engine_version"`
	Status        string `json:"status"`
}

func newRunInfo(run store.Run) RunInfo {
	return RunInfo{
		ID:            run.ID,
		Seq:           run.Seq,
		Scenario:      run.Scenario,
		ScenarioHash:  run.ScenarioHash,
		Order:         run.Order,
		EngineVersion: run.EngineVersion,
		Status:        run.Status,
	}
}

// truncateID shortens ids and hashes for text output.
func truncateID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
