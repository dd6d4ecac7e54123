package transform

import "fmt"

// Verify checks the output against the last processed source snapshot and
// the current filter and order. It returns an *InvariantError describing the
// first problem found, or nil.
//
// Verify reads the filter and comparator, so call it only when no data
// change is waiting to be delivered.
func (t *Transform[S, T]) Verify() error {
	var err error
	t.rt.Untracked(func() { err = t.check(t.clock.Current()) })
	return err
}

// verify schedules a check for when the runtime settles, when
// CheckInvariants is set. Until then, queued deliveries (source batches,
// probe notifications, data changes made in the same batch) can leave the
// output legitimately behind. Several synchronizations before the runtime
// settles share one check.
func (t *Transform[S, T]) verify(op string) {
	if !t.checkInvariants {
		return
	}
	t.checkOp = op
	if t.checkQueued {
		return
	}
	t.checkQueued = true
	t.rt.AfterSettle(t.settledCheck)
}

func (t *Transform[S, T]) settledCheck() {
	t.checkQueued = false
	if t.closed {
		return
	}
	gen := t.clock.Current()
	var err error
	t.rt.Untracked(func() { err = t.check(gen) })
	if err != nil {
		t.stats.InvariantViolations++
		t.lastViolation = err
		t.logger.Error("invariant violated",
			"op", t.checkOp,
			"generation", gen,
			"error", err,
		)
	}
}

func (t *Transform[S, T]) check(gen int64) error {
	items := t.out.Peek()
	claimed := make([]bool, len(items))

	// matched[k] is the output index claimed by the k-th included element.
	matched := make([]int, 0, len(items))
	for si, s := range t.view {
		if !t.included(s) {
			continue
		}
		found := -1
		for i, item := range items {
			if !claimed[i] && t.equivalent(s, item) {
				found = i
				break
			}
		}
		if found < 0 {
			return &InvariantError{
				Code:       ErrCodeMissingOutput,
				Message:    "included source element has no output element",
				Generation: gen,
				Index:      si,
			}
		}
		claimed[found] = true
		matched = append(matched, found)
	}
	for i, ok := range claimed {
		if !ok {
			return &InvariantError{
				Code:       ErrCodeStrayOutput,
				Message:    "output element corresponds to no included source element",
				Generation: gen,
				Index:      i,
			}
		}
	}

	switch t.order.kind {
	case orderPreserve:
		for k := 1; k < len(matched); k++ {
			if matched[k] < matched[k-1] {
				return &InvariantError{
					Code:       ErrCodeOrderViolation,
					Message:    fmt.Sprintf("output index %d precedes %d against source order", matched[k], matched[k-1]),
					Generation: gen,
					Index:      matched[k],
				}
			}
		}
	case orderCustom:
		for i := 1; i < len(items); i++ {
			if t.order.cmp(items[i-1], items[i]) > 0 {
				return &InvariantError{
					Code:       ErrCodeOrderViolation,
					Message:    "output is not sorted by the comparator",
					Generation: gen,
					Index:      i,
				}
			}
		}
	}
	return nil
}
