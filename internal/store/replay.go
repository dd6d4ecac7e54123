package store

import (
	"context"
	"fmt"
)

// Divergence is a step whose replayed output differs from the journal.
type Divergence struct {
	Seq          int64
	Op           string
	RecordedHash string
	ReplayedHash string // Empty if the replay did not reach this step
}

// ReplayReport compares a journaled run with a fresh execution.
type ReplayReport struct {
	RunID       string
	Compared    int
	Divergences []Divergence
	Extra       int // Replayed steps beyond the end of the journal
}

// Identical reports whether the replay reproduced every journaled step.
func (r ReplayReport) Identical() bool {
	return len(r.Divergences) == 0 && r.Extra == 0
}

// CompareRun loads the journaled steps of runID and compares their output
// hashes with replayed, step by step.
func (s *Store) CompareRun(ctx context.Context, runID string, replayed []Step) (ReplayReport, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return ReplayReport{}, fmt.Errorf("compare run: %w", err)
	}
	recorded, err := s.ReadSteps(ctx, runID)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("compare run: %w", err)
	}
	return CompareSteps(runID, recorded, replayed), nil
}

// CompareSteps matches steps by seq and reports hash mismatches.
func CompareSteps(runID string, recorded, replayed []Step) ReplayReport {
	report := ReplayReport{RunID: runID}

	bySeq := make(map[int64]Step, len(replayed))
	for _, st := range replayed {
		bySeq[st.Seq] = st
	}

	for _, rec := range recorded {
		report.Compared++
		rep, ok := bySeq[rec.Seq]
		delete(bySeq, rec.Seq)
		if ok && rep.OutputHash == rec.OutputHash {
			continue
		}
		d := Divergence{Seq: rec.Seq, Op: rec.Op, RecordedHash: rec.OutputHash}
		if ok {
			d.ReplayedHash = rep.OutputHash
		}
		report.Divergences = append(report.Divergences, d)
	}
	report.Extra = len(bySeq)
	return report
}
