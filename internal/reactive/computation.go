package reactive

// Computation is a value derived from tracked reads.
//
// The read function runs once at construction. Afterwards, any change to a
// dependency queues one recomputation (several changes inside a batch
// coalesce). After recomputing, subscribers are notified when the value
// differs from the previous one according to equal, or on every
// recomputation when equal is nil.
//
// The always-notify mode exists for probes: computations evaluated only to
// register dependencies, whose result may well be identical across runs.
type Computation[V any] struct {
	rt    *Runtime
	read  func() V
	equal func(a, b V) bool

	value    V
	deps     []func() // cancel functions for dependency registrations
	subs     listeners[func(V)]
	pending  bool
	disposed bool
	runs     int
}

// NewComputation creates a computation that notifies when its value changes.
func NewComputation[V comparable](rt *Runtime, read func() V) *Computation[V] {
	return NewComputationFunc(rt, read, func(a, b V) bool { return a == b })
}

// NewComputationFunc creates a computation that uses equal to suppress
// notifications for unchanged values. A nil equal notifies on every
// recomputation.
func NewComputationFunc[V any](rt *Runtime, read func() V, equal func(a, b V) bool) *Computation[V] {
	c := &Computation[V]{rt: rt, read: read, equal: equal}
	c.value = c.evaluate()
	return c
}

// NewProbe creates an always-notify computation around a read function that
// exists only for its dependencies.
func NewProbe(rt *Runtime, read func()) *Computation[struct{}] {
	return NewComputationFunc(rt, func() struct{} {
		read()
		return struct{}{}
	}, nil)
}

// Value returns the current value and registers the computation as a
// dependency of the computation currently evaluating.
func (c *Computation[V]) Value() V {
	c.rt.track(c)
	return c.value
}

// Peek returns the current value without registering a dependency.
func (c *Computation[V]) Peek() V {
	return c.value
}

// Subscribe registers fn to receive notifications.
// The returned function cancels the subscription.
func (c *Computation[V]) Subscribe(fn func(V)) func() {
	return c.subs.add(fn)
}

// Track re-evaluates the read function and replaces the dependency set
// without notifying subscribers. A recomputation already queued still runs.
func (c *Computation[V]) Track() {
	if c.disposed {
		return
	}
	c.value = c.evaluate()
}

// Pending reports whether a recomputation is queued.
func (c *Computation[V]) Pending() bool {
	return c.pending
}

// Runs returns how many times the read function has been evaluated.
func (c *Computation[V]) Runs() int {
	return c.runs
}

// Dependencies returns the number of sources the last evaluation read.
func (c *Computation[V]) Dependencies() int {
	return len(c.deps)
}

// Dispose releases every dependency and subscription. A disposed
// computation never runs again.
func (c *Computation[V]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.release()
	c.subs.clear()
}

// Disposed reports whether Dispose has been called.
func (c *Computation[V]) Disposed() bool {
	return c.disposed
}

func (c *Computation[V]) observe(fn func()) func() {
	return c.subs.add(func(V) { fn() })
}

// evaluate runs read under tracking and re-registers dependencies.
func (c *Computation[V]) evaluate() V {
	c.release()

	var v V
	deps := c.rt.collect(func() { v = c.read() })
	c.runs++

	c.deps = make([]func(), 0, len(deps))
	for _, d := range deps {
		c.deps = append(c.deps, d.observe(c.invalidate))
	}
	return v
}

// invalidate queues a recomputation unless one is already queued.
func (c *Computation[V]) invalidate() {
	if c.disposed || c.pending {
		return
	}
	c.pending = true
	c.rt.schedule(c.recompute)
}

func (c *Computation[V]) recompute() {
	c.pending = false
	if c.disposed {
		return
	}
	prev := c.value
	next := c.evaluate()
	c.value = next
	if c.equal != nil && c.equal(prev, next) {
		return
	}
	c.subs.each(func(fn func(V)) { fn(next) })
}

func (c *Computation[V]) release() {
	for _, cancel := range c.deps {
		cancel()
	}
	c.deps = nil
}
