package reactive

// Cell holds a single mutable value.
//
// Every Set notifies observers, even when the new value equals the old one;
// cells may hold values that are not comparable.
type Cell[T any] struct {
	rt        *Runtime
	value     T
	observers listeners[func()]
}

// NewCell creates a cell holding v.
func NewCell[T any](rt *Runtime, v T) *Cell[T] {
	return &Cell[T]{rt: rt, value: v}
}

// Get returns the value and registers the cell as a dependency of the
// computation currently evaluating.
func (c *Cell[T]) Get() T {
	c.rt.track(c)
	return c.value
}

// Peek returns the value without registering a dependency.
func (c *Cell[T]) Peek() T {
	return c.value
}

// Set replaces the value and notifies observers.
func (c *Cell[T]) Set(v T) {
	c.value = v
	c.observers.each(func(fn func()) { c.rt.schedule(fn) })
}

// Update replaces the value with fn(current).
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

func (c *Cell[T]) observe(fn func()) func() {
	return c.observers.add(fn)
}
