package transform

import "sync/atomic"

// Clock is the transform's logical clock.
//
// Every completed synchronization (initial resync, incremental batch, probe
// firing, reconfiguration) is stamped with the next generation number. Log
// lines and invariant errors carry it, so a sequence of events can be
// correlated without wall-clock time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock at generation 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new generation.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the latest generation without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
