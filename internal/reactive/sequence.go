package reactive

import (
	"fmt"
	"slices"
)

// Sequence is an ordered container that publishes a Batch for every
// mutation.
//
// Storage is copy-on-write: every mutation builds a fresh slice, so the slice
// returned by Peek and carried by each Batch stays valid (and unchanged)
// after later mutations.
//
// Index arguments out of range panic, as slice indexing does.
type Sequence[T any] struct {
	rt        *Runtime
	items     []T
	subs      listeners[func(Batch[T])]
	observers listeners[func()]
}

// NewSequence creates a sequence holding a copy of items.
func NewSequence[T any](rt *Runtime, items ...T) *Sequence[T] {
	return &Sequence[T]{rt: rt, items: slices.Clone(items)}
}

// Runtime returns the runtime the sequence delivers notifications through.
func (s *Sequence[T]) Runtime() *Runtime {
	return s.rt
}

// Peek returns the current content without registering a dependency.
// The returned slice must not be modified.
func (s *Sequence[T]) Peek() []T {
	return s.items
}

// Items returns the current content and registers a dependency.
// The returned slice must not be modified.
func (s *Sequence[T]) Items() []T {
	s.rt.track(s)
	return s.items
}

// Len returns the number of elements and registers a dependency.
func (s *Sequence[T]) Len() int {
	s.rt.track(s)
	return len(s.items)
}

// At returns the element at i and registers a dependency.
func (s *Sequence[T]) At(i int) T {
	s.rt.track(s)
	return s.items[i]
}

// Subscribe registers fn to receive every change batch.
// The returned function cancels the subscription.
func (s *Sequence[T]) Subscribe(fn func(Batch[T])) func() {
	return s.subs.add(fn)
}

// Subscribers returns the number of live subscriptions.
func (s *Sequence[T]) Subscribers() int {
	return s.subs.len()
}

func (s *Sequence[T]) observe(fn func()) func() {
	return s.observers.add(fn)
}

// InsertAt inserts vs at index i.
func (s *Sequence[T]) InsertAt(i int, vs ...T) {
	s.Splice(i, 0, vs...)
}

// Push appends vs.
func (s *Sequence[T]) Push(vs ...T) {
	s.Splice(len(s.items), 0, vs...)
}

// Unshift prepends vs.
func (s *Sequence[T]) Unshift(vs ...T) {
	s.Splice(0, 0, vs...)
}

// RemoveAt removes and returns the element at i.
func (s *Sequence[T]) RemoveAt(i int) T {
	if i < 0 || i >= len(s.items) {
		panic(fmt.Sprintf("reactive: remove index %d out of range [0,%d)", i, len(s.items)))
	}
	return s.Splice(i, 1)[0]
}

// Set replaces the element at i and returns the previous one.
// Observers see a deletion followed by an addition at i.
func (s *Sequence[T]) Set(i int, v T) T {
	if i < 0 || i >= len(s.items) {
		panic(fmt.Sprintf("reactive: set index %d out of range [0,%d)", i, len(s.items)))
	}
	return s.Splice(i, 1, v)[0]
}

// Clear removes every element and returns them.
func (s *Sequence[T]) Clear() []T {
	return s.Splice(0, len(s.items))
}

// Splice removes deleteCount elements starting at start, inserts vs in their
// place, and returns the removed elements. deleteCount is clamped to the
// available tail. A splice that changes nothing publishes nothing.
//
// The published batch lists every deletion at index start, then every
// insertion at start, start+1, ...
func (s *Sequence[T]) Splice(start, deleteCount int, vs ...T) []T {
	n := len(s.items)
	if start < 0 || start > n {
		panic(fmt.Sprintf("reactive: splice start %d out of range [0,%d]", start, n))
	}
	if deleteCount < 0 {
		panic(fmt.Sprintf("reactive: negative splice delete count %d", deleteCount))
	}
	deleteCount = min(deleteCount, n-start)
	if deleteCount == 0 && len(vs) == 0 {
		return nil
	}

	removed := slices.Clone(s.items[start : start+deleteCount])

	next := make([]T, 0, n-deleteCount+len(vs))
	next = append(next, s.items[:start]...)
	next = append(next, vs...)
	next = append(next, s.items[start+deleteCount:]...)

	changes := make([]Change[T], 0, deleteCount+len(vs))
	for _, v := range removed {
		changes = append(changes, Change[T]{Kind: Deleted, Index: start, Value: v})
	}
	for k, v := range vs {
		changes = append(changes, Change[T]{Kind: Added, Index: start + k, Value: v})
	}

	s.publish(next, changes)
	return removed
}

// Move relocates the element at from so that it ends up at index to.
func (s *Sequence[T]) Move(from, to int) {
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		panic(fmt.Sprintf("reactive: move %d -> %d out of range [0,%d)", from, to, n))
	}
	if from == to {
		return
	}

	// perm[j] is the old index of the element that ends up at j.
	perm := make([]int, n)
	for j := range perm {
		perm[j] = j
	}
	perm = slices.Delete(perm, from, from+1)
	perm = slices.Insert(perm, to, from)

	s.reorder(perm)
}

// SortFunc stably sorts the sequence by cmp. Nothing is published when the
// order does not change.
func (s *Sequence[T]) SortFunc(cmp func(a, b T) int) {
	perm := make([]int, len(s.items))
	for j := range perm {
		perm[j] = j
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return cmp(s.items[a], s.items[b])
	})
	s.reorder(perm)
}

// Reverse reverses the sequence.
func (s *Sequence[T]) Reverse() {
	n := len(s.items)
	perm := make([]int, n)
	for j := range perm {
		perm[j] = n - 1 - j
	}
	s.reorder(perm)
}

// reorder applies a permutation (perm[new] = old) and publishes a move
// batch: one Deleted/Added pair per element whose index changed, ordered by
// destination index.
func (s *Sequence[T]) reorder(perm []int) {
	var changes []Change[T]
	for to, from := range perm {
		if from == to {
			continue
		}
		v := s.items[from]
		changes = append(changes,
			Change[T]{Kind: Deleted, Index: from, Value: v, Move: true, Counterpart: to},
			Change[T]{Kind: Added, Index: to, Value: v, Move: true, Counterpart: from},
		)
	}
	if len(changes) == 0 {
		return
	}

	next := make([]T, len(perm))
	for to, from := range perm {
		next[to] = s.items[from]
	}
	s.publish(next, changes)
}

// publish installs the new content and schedules delivery to subscribers
// and dependent computations.
func (s *Sequence[T]) publish(next []T, changes []Change[T]) {
	s.items = next
	b := Batch[T]{Changes: changes, Items: next}
	s.subs.each(func(fn func(Batch[T])) {
		s.rt.schedule(func() { fn(b) })
	})
	s.observers.each(func(fn func()) { s.rt.schedule(fn) })
}
