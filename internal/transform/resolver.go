package transform

// findCorresponding returns the index of the first output element at or after
// start that corresponds to s, or -1.
func (t *Transform[S, T]) findCorresponding(s S, start int) int {
	items := t.out.Peek()
	for i := max(start, 0); i < len(items); i++ {
		if t.equivalent(s, items[i]) {
			return i
		}
	}
	return -1
}

// findUnclaimed returns the index of the first output element that
// corresponds to s and is not yet claimed, or -1. claimed is aligned with
// the current output.
func (t *Transform[S, T]) findUnclaimed(s S, claimed []bool) int {
	items := t.out.Peek()
	for i, item := range items {
		if !claimed[i] && t.equivalent(s, item) {
			return i
		}
	}
	return -1
}

// equivalent reports whether output element x was produced from s.
func (t *Transform[S, T]) equivalent(s S, x T) bool {
	if t.equivalence != nil {
		return t.equivalence(s, x)
	}
	return any(s) == any(x)
}

// included reports whether s passes the current filter.
func (t *Transform[S, T]) included(s S) bool {
	return t.filter == nil || t.filter(s)
}

// toOutput produces the output element for s.
func (t *Transform[S, T]) toOutput(s S) T {
	if t.mapper == nil {
		return any(s).(T)
	}
	t.stats.MapperCalls++
	return t.mapper(s)
}
