package transform

import "slices"

// resync rebuilds the output from the engine view with the minimum edits
// its algorithm finds, then stamps a new generation.
func (t *Transform[S, T]) resync() {
	switch t.order.kind {
	case orderPreserve:
		t.resyncPreserve()
	case orderUnordered:
		t.resyncMembership()
	case orderCustom:
		t.resyncMembership()
		t.out.SortFunc(t.order.cmp)
	}
	t.stats.Resyncs++
	t.resynced = true

	gen := t.clock.Next()
	t.logger.Debug("resync complete",
		"order", t.order.String(),
		"generation", gen,
		"source_len", len(t.view),
		"output_len", len(t.out.Peek()),
	)
	t.verify("resync")
}

// resyncPreserve walks the view in order, keeping a cursor into the output.
// Everything before the cursor is final. An included element is inserted or
// moved to the cursor; an excluded one is removed wherever it sits. Whatever
// remains past the cursor at the end is stale and gets truncated.
func (t *Transform[S, T]) resyncPreserve() {
	cursor := 0
	for _, s := range t.view {
		found := t.findCorresponding(s, cursor)
		if !t.included(s) {
			if found >= 0 {
				t.out.RemoveAt(found)
			}
			continue
		}
		switch {
		case found < 0:
			t.out.InsertAt(cursor, t.toOutput(s))
		case found != cursor:
			t.out.Move(found, cursor)
		}
		cursor++
	}
	if n := len(t.out.Peek()); n > cursor {
		t.out.Splice(cursor, n-cursor)
	}
}

// resyncMembership fixes membership only. Each output element can be claimed
// by one source element, so duplicates and non-injective equivalences each
// keep their own output element. New elements are appended; unclaimed
// leftovers are removed from the highest index down.
func (t *Transform[S, T]) resyncMembership() {
	claimed := make([]bool, len(t.out.Peek()))
	for _, s := range t.view {
		found := t.findUnclaimed(s, claimed)
		if !t.included(s) {
			if found >= 0 {
				t.out.RemoveAt(found)
				claimed = slices.Delete(claimed, found, found+1)
			}
			continue
		}
		if found < 0 {
			t.out.Push(t.toOutput(s))
			claimed = append(claimed, true)
			continue
		}
		claimed[found] = true
	}
	for i := len(claimed) - 1; i >= 0; i-- {
		if !claimed[i] {
			t.out.RemoveAt(i)
		}
	}
}
