package transform

import (
	"github.com/roach88/tracksync/internal/reactive"
)

// reorderStrategy reconciles the output after a source reorder under
// PreserveSource. fullResync is the only implementation; an incremental one
// can replace it without touching the batch dispatcher.
type reorderStrategy[S, T any] interface {
	apply(t *Transform[S, T], b reactive.Batch[S])
}

type fullResync[S, T any] struct{}

func (fullResync[S, T]) apply(t *Transform[S, T], _ reactive.Batch[S]) {
	t.resync()
}

// processBatch applies one source batch to the output.
func (t *Transform[S, T]) processBatch(b reactive.Batch[S]) {
	if len(b.Changes) == 0 {
		return
	}
	t.view = b.Items
	t.resynced = false

	switch {
	case b.IsReorder():
		if t.order.kind != orderPreserve {
			// Membership did not change and the output order does not
			// follow the source.
			t.stats.IgnoredReorders++
			break
		}
		t.stats.ReorderFallbacks++
		t.reorder.apply(t, b)

	case len(b.Changes) == 1:
		t.applyChange(b.Changes[0], false)

	default:
		inserted := false
		for _, c := range b.Changes {
			if t.applyChange(c, true) {
				inserted = true
			}
			if t.resynced {
				// A fallback resync already reconciled against the
				// batch snapshot, which includes the remaining changes.
				break
			}
		}
		if inserted && !t.resynced && t.order.kind == orderCustom {
			t.out.SortFunc(t.order.cmp)
		}
	}

	if !t.resynced {
		t.stats.IncrementalBatches++
		gen := t.clock.Next()
		t.logger.Debug("batch applied",
			"changes", len(b.Changes),
			"generation", gen,
			"output_len", len(t.out.Peek()),
		)
		t.verify("batch")
	}
	t.arm()
}

// applyChange routes one change. It reports whether an output element was
// inserted.
func (t *Transform[S, T]) applyChange(c reactive.Change[S], inBatch bool) bool {
	switch c.Kind {
	case reactive.Added:
		return t.processAdd(c, inBatch)
	case reactive.Deleted:
		t.processDelete(c)
	}
	return false
}

// processAdd handles an inserted source element. Inside a multi-change batch
// the custom sort is deferred until the whole batch has been applied.
func (t *Transform[S, T]) processAdd(c reactive.Change[S], inBatch bool) bool {
	if !t.included(c.Value) {
		return false
	}
	switch t.order.kind {
	case orderUnordered:
		t.out.Push(t.toOutput(c.Value))
	case orderCustom:
		t.out.Push(t.toOutput(c.Value))
		if !inBatch {
			t.out.SortFunc(t.order.cmp)
		}
	default:
		pos, ok := t.insertPosition(c)
		if !ok {
			t.fallback("predecessor has no output element", c.Index)
			return false
		}
		t.out.InsertAt(pos, t.toOutput(c.Value))
	}
	return true
}

// insertPosition finds where an added element goes under PreserveSource.
//
// Without a filter the output mirrors the source index for index. With a
// filter, the element goes right after the output element of its nearest
// included predecessor in the view, or first if there is none.
func (t *Transform[S, T]) insertPosition(c reactive.Change[S]) (int, bool) {
	items := t.out.Peek()
	if t.filter == nil {
		return c.Index, c.Index <= len(items)
	}
	switch {
	case c.Index == 0:
		return 0, true
	case c.Index == len(t.view)-1:
		return len(items), true
	}
	for j := min(c.Index, len(t.view)) - 1; j >= 0; j-- {
		prev := t.view[j]
		if !t.included(prev) {
			continue
		}
		pos := t.rank(j)
		if pos >= len(items) || !t.equivalent(prev, items[pos]) {
			return 0, false
		}
		return pos + 1, true
	}
	return 0, true
}

// rank returns the number of included view elements before index i, which
// is the output position of the element at i under PreserveSource. Ranking
// by position rather than by value keeps duplicates apart.
func (t *Transform[S, T]) rank(i int) int {
	if t.filter == nil {
		return i
	}
	n := 0
	for _, s := range t.view[:min(i, len(t.view))] {
		if t.included(s) {
			n++
		}
	}
	return n
}

// processDelete handles a removed source element.
//
// Under PreserveSource the elements before a deletion are untouched, so the
// deleted element's output position is its rank. Output positions of
// unordered and custom outputs are unrelated to source indices and are
// resolved by value.
func (t *Transform[S, T]) processDelete(c reactive.Change[S]) {
	// The filter is evaluated against the element's current data.
	if !t.included(c.Value) {
		return
	}
	if t.order.kind != orderPreserve {
		t.removeCorresponding(c.Value)
		return
	}
	pos := t.rank(c.Index)
	items := t.out.Peek()
	if pos < len(items) && t.equivalent(c.Value, items[pos]) {
		t.out.RemoveAt(pos)
		return
	}
	t.logger.Debug("output not aligned with source, resolving by value",
		"index", c.Index,
		"position", pos,
		"output_len", len(items),
	)
	t.removeCorresponding(c.Value)
}

// removeCorresponding removes the first output element that corresponds to s.
// A miss means the element is already gone and is not an error.
func (t *Transform[S, T]) removeCorresponding(s S) {
	i := t.findCorresponding(s, 0)
	if i < 0 {
		t.stats.ResolutionMisses++
		t.logger.Debug("deleted element has no output element")
		return
	}
	t.out.RemoveAt(i)
}

// fallback abandons the incremental path and resyncs.
func (t *Transform[S, T]) fallback(reason string, index int) {
	t.logger.Debug("incremental update fell back to resync",
		"reason", reason,
		"index", index,
	)
	t.resync()
}
