package store

import (
	"context"
	"fmt"

	"github.com/roach88/tracksync/internal/value"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Run is the journal header of one scenario execution.
type Run struct {
	ID            string // UUIDv7
	Seq           int64  // Assigned by WriteRun
	Scenario      string
	ScenarioHash  string
	Order         string
	EngineVersion string
	Status        string
}

// Step is one executed scenario step.
type Step struct {
	RunID      string
	Seq        int64 // Position in the scenario, 0 is the initial state
	Op         string
	Output     value.List
	OutputHash string
	Stats      value.Record
}

// WriteRun inserts a run header and assigns it the next run seq.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting a run is
// silently ignored and keeps the original seq.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	status := run.Status
	if status == "" {
		status = StatusRunning
	}

	// WHERE true disambiguates the upsert clause after INSERT ... SELECT.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, scenario, scenario_hash, order_mode, engine_version, status)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?
		FROM runs WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Scenario,
		run.ScenarioHash,
		run.Order,
		run.EngineVersion,
		status,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the final status of a run.
func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrNotFound)
	}
	return nil
}

// WriteStep inserts a step record.
// Uses ON CONFLICT(run_id, seq) DO NOTHING for idempotency.
// The run referenced by RunID must exist (foreign key constraint).
//
// When OutputHash is empty it is computed from Output.
func (s *Store) WriteStep(ctx context.Context, step Step) error {
	outputJSON, err := marshalOutput(step.Output)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	statsJSON, err := marshalStats(step.Stats)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}

	hash := step.OutputHash
	if hash == "" {
		hash, err = value.SnapshotHash(step.Output)
		if err != nil {
			return fmt.Errorf("write step: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps
		(run_id, seq, op, output, output_hash, stats)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		step.RunID,
		step.Seq,
		step.Op,
		outputJSON,
		hash,
		statsJSON,
	)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	return nil
}
