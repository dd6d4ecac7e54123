package reactive

import "slices"

// listeners is an ordered set of callbacks.
// Cancelling during iteration is safe: each walks a snapshot and skips
// entries cancelled after the walk started.
type listeners[F any] struct {
	entries []*listener[F]
}

type listener[F any] struct {
	fn        F
	cancelled bool
}

// add registers fn and returns its cancel function. Cancel is idempotent.
func (l *listeners[F]) add(fn F) func() {
	e := &listener[F]{fn: fn}
	l.entries = append(l.entries, e)
	return func() {
		if e.cancelled {
			return
		}
		e.cancelled = true
		l.entries = slices.DeleteFunc(l.entries, func(x *listener[F]) bool { return x == e })
	}
}

// each calls visit for every live listener in registration order.
func (l *listeners[F]) each(visit func(F)) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := slices.Clone(l.entries)
	for _, e := range snapshot {
		if !e.cancelled {
			visit(e.fn)
		}
	}
}

// clear cancels every listener.
func (l *listeners[F]) clear() {
	for _, e := range l.entries {
		e.cancelled = true
	}
	l.entries = nil
}

func (l *listeners[F]) len() int {
	return len(l.entries)
}
