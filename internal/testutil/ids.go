// Package testutil provides deterministic helpers for tests and golden runs.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates run ids from a resettable logical counter:
// "<prefix>-0001", "<prefix>-0002", ...
//
// Resetting lets the same scenario run several times with identical ids, so
// journals and golden traces from separate runs compare byte for byte.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIDs creates a generator starting at 0. The first id ends in
// 0001. An empty prefix defaults to "test-run".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "test-run"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Issued returns how many ids have been generated since the last reset.
func (g *SequentialIDs) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next id ends in 0001 again.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedID generates the same run id every time.
//
// Thread-safety: FixedID is stateless and safe for concurrent use.
type FixedID string

// Generate returns the fixed id, or "test-run-fixed" when empty.
func (id FixedID) Generate() string {
	if id == "" {
		return "test-run-fixed"
	}
	return string(id)
}
