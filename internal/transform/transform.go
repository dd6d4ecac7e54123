package transform

import (
	"log/slog"

	"github.com/roach88/tracksync/internal/reactive"
)

// Source is the observable sequence a transform derives from.
// *reactive.Sequence satisfies it.
type Source[S any] interface {
	Runtime() *reactive.Runtime
	Peek() []S
	Subscribe(fn func(reactive.Batch[S])) func()
}

// Transform maintains an output sequence derived from a source.
//
// A Transform is not safe for concurrent use; like the runtime it belongs
// to, it is driven from a single goroutine.
type Transform[S, T any] struct {
	rt  *reactive.Runtime
	src Source[S]
	out *reactive.Sequence[T]

	// view is the source content as of the last processed batch.
	view []S

	mapper      func(S) T
	equivalence func(S, T) bool
	filter      func(S) bool
	order       Order[T]

	filterProbe *reactive.Computation[struct{}]
	orderProbe  *reactive.Computation[struct{}]
	reorder     reorderStrategy[S, T]

	clock           *Clock
	stats           Stats
	checkInvariants bool
	checkQueued     bool
	checkOp         string
	lastViolation   error
	resynced        bool
	closed          bool
	unsubscribe     func()
	logger          *slog.Logger
}

// New builds a transform over src and performs the initial resync.
//
// The output sequence shares src's runtime. New returns a *ConfigError when
// cfg is inconsistent.
func New[S, T any](src Source[S], cfg Config[S, T]) (*Transform[S, T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := src.Runtime()
	t := &Transform[S, T]{
		rt:              rt,
		src:             src,
		out:             reactive.NewSequence[T](rt),
		view:            src.Peek(),
		mapper:          cfg.Mapper,
		equivalence:     cfg.Equivalence,
		filter:          cfg.Filter,
		order:           cfg.Order,
		reorder:         fullResync[S, T]{},
		clock:           NewClock(),
		checkInvariants: cfg.CheckInvariants,
		logger:          logger,
	}

	t.sync(func() {
		t.resync()
		t.arm()
	})
	t.unsubscribe = src.Subscribe(t.handleBatch)

	t.logger.Debug("transform created",
		"order", t.order.String(),
		"filtered", t.filter != nil,
		"mapped", t.mapper != nil,
		"output_len", len(t.out.Peek()),
	)
	return t, nil
}

// Output returns the derived sequence. Subscribe to it to observe changes;
// do not mutate it.
func (t *Transform[S, T]) Output() *reactive.Sequence[T] {
	return t.out
}

// Items returns the current output content without registering a dependency.
func (t *Transform[S, T]) Items() []T {
	return t.out.Peek()
}

// Order returns the active order.
func (t *Transform[S, T]) Order() Order[T] {
	return t.order
}

// SetFilter replaces the filter and resyncs. Setting nil when there is no
// filter is a no-op. Functions cannot be compared, so any other call resyncs.
func (t *Transform[S, T]) SetFilter(filter func(S) bool) {
	if t.closed || (t.filter == nil && filter == nil) {
		return
	}
	t.filter = filter
	// The resync changes output membership, and the order probe watches
	// adjacent output pairs, so both probes are re-armed.
	t.sync(func() {
		t.resync()
		t.arm()
	})
}

// SetOrder replaces the order.
//
// Switching to Unordered keeps the output as it is. Switching to
// PreserveSource or Custom resyncs, except for PreserveSource to
// PreserveSource which is a no-op.
func (t *Transform[S, T]) SetOrder(o Order[T]) error {
	if err := validateOrder(o); err != nil {
		return err
	}
	if t.closed || (o.kind == t.order.kind && o.kind != orderCustom) {
		return nil
	}
	t.order = o
	if o.kind == orderUnordered {
		t.armOrderProbe()
		t.logger.Debug("order set", "order", o.String())
		return nil
	}
	t.sync(func() {
		t.resync()
		t.armOrderProbe()
	})
	return nil
}

// Resync forces a full resync against the last processed source snapshot.
func (t *Transform[S, T]) Resync() {
	if t.closed {
		return
	}
	t.sync(func() {
		t.resync()
		t.arm()
	})
}

// Stats returns a copy of the transform's counters.
func (t *Transform[S, T]) Stats() Stats {
	s := t.stats
	s.Generation = t.clock.Current()
	return s
}

// LastViolation returns the most recent invariant violation recorded with
// CheckInvariants enabled, or nil.
func (t *Transform[S, T]) LastViolation() error {
	return t.lastViolation
}

// Close stops following the source and releases both probes. The output
// keeps its last content.
func (t *Transform[S, T]) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	if t.filterProbe != nil {
		t.filterProbe.Dispose()
		t.filterProbe = nil
	}
	if t.orderProbe != nil {
		t.orderProbe.Dispose()
		t.orderProbe = nil
	}
	t.logger.Debug("transform closed", "generation", t.clock.Current())
}

// Closed reports whether Close has been called.
func (t *Transform[S, T]) Closed() bool {
	return t.closed
}

func (t *Transform[S, T]) handleBatch(b reactive.Batch[S]) {
	if t.closed {
		return
	}
	t.processBatch(b)
}

// sync runs a synchronization outside any enclosing tracking scope, with
// output deliveries held until it completes.
func (t *Transform[S, T]) sync(fn func()) {
	t.rt.Untracked(func() {
		t.rt.Batch(fn)
	})
}
