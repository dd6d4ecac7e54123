package reactive

import (
	"log/slog"
)

// DefaultMaxDeliveries bounds how many deliveries a single drain may run.
// Legitimate cascades stay far below it; feedback loops hit it quickly.
const DefaultMaxDeliveries = 100_000

// observable is anything a computation can depend on.
type observable interface {
	// observe registers fn to run (through the delivery queue) whenever the
	// source changes. The returned function cancels the registration.
	observe(fn func()) (cancel func())
}

// tracker collects the observables read during one evaluation.
type tracker struct {
	seen map[observable]struct{}
	deps []observable
}

// Runtime owns dependency tracking and notification delivery for a group of
// cells, sequences and computations.
//
// INVARIANTS:
//   - deliveries run one at a time, in the order they were scheduled
//   - no delivery runs while a Batch is open
//   - settle callbacks run only when the queue is empty and no Batch is open
//   - the tracking stack is balanced after every evaluation, even on panic
type Runtime struct {
	tracking []*tracker
	queue    []func()
	settled  []func()

	batchDepth int
	draining   bool

	maxDeliveries int
	lastErr       error
	logger        *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithMaxDeliveries sets the per-drain delivery limit.
// Zero or a negative value disables the limit.
func WithMaxDeliveries(n int) RuntimeOption {
	return func(rt *Runtime) {
		rt.maxDeliveries = n
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// NewRuntime creates a Runtime with the given options applied.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		queue:         make([]func(), 0, 16),
		maxDeliveries: DefaultMaxDeliveries,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Batch runs fn with delivery suspended. Notifications raised inside fn are
// delivered, in order, once the outermost Batch returns.
//
// Batch may be nested and may be called from inside a handler; in the latter
// case the queued deliveries run after the current handler finishes.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	func() {
		defer func() { rt.batchDepth-- }()
		fn()
	}()
	if rt.batchDepth == 0 && !rt.draining {
		rt.drain()
	}
}

// Untracked runs fn without registering any reads as dependencies of the
// computation currently evaluating.
func (rt *Runtime) Untracked(fn func()) {
	rt.tracking = append(rt.tracking, nil)
	defer func() { rt.tracking = rt.tracking[:len(rt.tracking)-1] }()
	fn()
}

// Pending returns the number of queued deliveries.
func (rt *Runtime) Pending() int {
	return len(rt.queue)
}

// Err returns the error recorded by the most recent drain that hit the
// delivery limit, or nil.
func (rt *Runtime) Err() error {
	return rt.lastErr
}

// AfterSettle runs fn once every queued delivery, including those queued by
// other deliveries, has run and no Batch is open. Called while the runtime is
// already settled, it runs fn immediately. Callbacks run in registration
// order; a callback that schedules deliveries is followed by those
// deliveries before the next callback runs.
func (rt *Runtime) AfterSettle(fn func()) {
	rt.settled = append(rt.settled, fn)
	if rt.batchDepth > 0 || rt.draining {
		return
	}
	rt.drain()
}

// schedule enqueues a delivery and drains the queue unless a batch is open
// or a drain is already running further up the stack.
func (rt *Runtime) schedule(fn func()) {
	rt.queue = append(rt.queue, fn)
	if rt.batchDepth > 0 || rt.draining {
		return
	}
	rt.drain()
}

// drain runs queued deliveries until the queue is empty, then settle
// callbacks until both are empty.
// CRITICAL: must never be re-entered; schedule, Batch and AfterSettle check
// draining.
func (rt *Runtime) drain() {
	rt.draining = true
	defer func() { rt.draining = false }()

	delivered := 0
	for {
		for len(rt.queue) > 0 {
			if rt.maxDeliveries > 0 && delivered >= rt.maxDeliveries {
				err := &DeliveryLimitError{
					Delivered: delivered,
					Dropped:   len(rt.queue),
					Limit:     rt.maxDeliveries,
				}
				rt.logger.Error("delivery limit exceeded, dropping queued notifications",
					"delivered", delivered,
					"dropped", len(rt.queue),
					"limit", rt.maxDeliveries,
				)
				clear(rt.queue)
				rt.queue = rt.queue[:0]
				// State is inconsistent after dropping deliveries.
				clear(rt.settled)
				rt.settled = rt.settled[:0]
				rt.lastErr = err
				return
			}

			delivered++
			popFront(&rt.queue)()
		}

		if len(rt.settled) == 0 {
			return
		}
		popFront(&rt.settled)()
	}
}

// popFront removes and returns the first callback, nilling out its slot so
// the closure can be collected.
func popFront(q *[]func()) func() {
	fn := (*q)[0]
	(*q)[0] = nil
	if len(*q) == 1 {
		*q = (*q)[:0]
	} else {
		*q = (*q)[1:]
	}
	return fn
}

// track registers o as a dependency of the evaluation on top of the stack.
func (rt *Runtime) track(o observable) {
	if len(rt.tracking) == 0 {
		return
	}
	t := rt.tracking[len(rt.tracking)-1]
	if t == nil {
		return
	}
	if _, ok := t.seen[o]; ok {
		return
	}
	t.seen[o] = struct{}{}
	t.deps = append(t.deps, o)
}

// collect runs fn and returns every observable it read, in first-read order.
func (rt *Runtime) collect(fn func()) []observable {
	t := &tracker{seen: make(map[observable]struct{})}
	rt.tracking = append(rt.tracking, t)
	defer func() { rt.tracking = rt.tracking[:len(rt.tracking)-1] }()
	fn()
	return t.deps
}
