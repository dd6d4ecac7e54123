package transform

import (
	"github.com/roach88/tracksync/internal/reactive"
)

// arm re-arms both dependency probes against the current view and output.
func (t *Transform[S, T]) arm() {
	t.armFilterProbe()
	t.armOrderProbe()
}

// armFilterProbe makes the filter probe depend on everything the filter reads
// for every element of the view. Without a filter there is no probe.
func (t *Transform[S, T]) armFilterProbe() {
	t.filterProbe = t.rearm(t.filterProbe, t.filter != nil, t.readFilterDeps, "filter")
}

// armOrderProbe makes the order probe depend on everything the comparator
// reads for every adjacent pair in the output. Only Custom order has one.
func (t *Transform[S, T]) armOrderProbe() {
	t.orderProbe = t.rearm(t.orderProbe, t.order.kind == orderCustom, t.readOrderDeps, "order")
}

// rearm creates, re-tracks or disposes a probe.
//
// Re-tracking replaces the dependency set without firing. A notification
// that is already queued for the probe still fires afterwards, so a data
// change that raced a structural update is never lost.
func (t *Transform[S, T]) rearm(p *reactive.Computation[struct{}], wanted bool, read func(), name string) *reactive.Computation[struct{}] {
	if !wanted {
		if p != nil {
			p.Dispose()
		}
		return nil
	}
	if p != nil && !p.Disposed() {
		p.Track()
		return p
	}
	p = reactive.NewProbe(t.rt, read)
	p.Subscribe(func(struct{}) { t.onProbe(name) })
	return p
}

func (t *Transform[S, T]) readFilterDeps() {
	filter := t.filter
	if filter == nil {
		return
	}
	for _, s := range t.view {
		filter(s)
	}
}

func (t *Transform[S, T]) readOrderDeps() {
	cmp := t.order.cmp
	if cmp == nil {
		return
	}
	items := t.out.Peek()
	for i := 1; i < len(items); i++ {
		cmp(items[i-1], items[i])
	}
}

// onProbe reacts to a dependency change that the source's change stream
// cannot report.
func (t *Transform[S, T]) onProbe(name string) {
	if t.closed {
		return
	}
	t.stats.ProbeFirings++
	t.logger.Debug("dependency changed", "probe", name, "generation", t.clock.Current())
	t.resync()
	t.arm()
}
