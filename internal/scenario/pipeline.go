package scenario

import (
	"fmt"
	"log/slog"

	"github.com/roach88/tracksync/internal/expr"
	"github.com/roach88/tracksync/internal/reactive"
	"github.com/roach88/tracksync/internal/transform"
	"github.com/roach88/tracksync/internal/value"
)

// Item is a source element: a record whose data can change in place.
type Item struct {
	data *reactive.Cell[value.Record]
}

func newItem(rt *reactive.Runtime, rec value.Record) *Item {
	return &Item{data: reactive.NewCell(rt, rec)}
}

// Data returns the record and registers a dependency on it.
func (it *Item) Data() value.Record {
	return it.data.Get()
}

// Peek returns the record without registering a dependency.
func (it *Item) Peek() value.Record {
	return it.data.Peek()
}

// Update merges patch into the record.
func (it *Item) Update(patch value.Record) {
	it.data.Update(func(r value.Record) value.Record { return r.With(patch) })
}

// Row is a mapped output element. Its value is computed once, when the
// item enters the output.
type Row struct {
	item *Item
	val  value.Value
}

// orderSpec is an order configuration from a scenario.
type orderSpec struct {
	order      string
	sortKey    string
	descending bool
	collate    string
}

// pipeline hides the output element type of the transform under test.
type pipeline interface {
	render() value.List
	setFilter(filter func(*Item) bool)
	setOrder(spec orderSpec) error
	resync()
	verify() error
	stats() transform.Stats
	close()
}

// driver adapts a Transform[*Item, T] to pipeline.
type driver[T any] struct {
	tr     *transform.Transform[*Item, T]
	show   func(T) value.Value
	key    func(T) value.Record
	logger *slog.Logger
}

func (d *driver[T]) render() value.List {
	items := d.tr.Items()
	out := make(value.List, len(items))
	for i, el := range items {
		out[i] = d.show(el)
	}
	return out
}

func (d *driver[T]) setFilter(filter func(*Item) bool) { d.tr.SetFilter(filter) }
func (d *driver[T]) resync()                          { d.tr.Resync() }
func (d *driver[T]) verify() error                    { return d.tr.Verify() }
func (d *driver[T]) stats() transform.Stats           { return d.tr.Stats() }
func (d *driver[T]) close()                           { d.tr.Close() }

func (d *driver[T]) setOrder(spec orderSpec) error {
	o, err := d.order(spec)
	if err != nil {
		return err
	}
	return d.tr.SetOrder(o)
}

// order builds a transform order. Custom comparators evaluate the sort key
// on the record returned by d.key.
func (d *driver[T]) order(spec orderSpec) (transform.Order[T], error) {
	switch spec.order {
	case "", OrderPreserve:
		return transform.PreserveSource[T](), nil
	case OrderUnordered:
		return transform.Unordered[T](), nil
	case OrderCustom:
		cmp, err := expr.NewComparator(spec.sortKey,
			expr.Descending(spec.descending),
			expr.WithCollation(spec.collate),
			expr.WithComparatorLogger(d.logger),
		)
		if err != nil {
			return transform.Order[T]{}, err
		}
		return transform.Custom(func(a, b T) int {
			return cmp.Compare(d.key(a), d.key(b))
		}), nil
	default:
		return transform.Order[T]{}, fmt.Errorf("unknown order %q", spec.order)
	}
}

// newPipeline builds the transform a scenario describes.
//
// Without a map expression the output holds the items themselves and
// renders their current data; filter and sort key both read item data
// reactively. With a map expression the output holds rows, and the sort key
// sees the mapped value (non-record values as {value: v}).
func newPipeline(src *reactive.Sequence[*Item], spec TransformSpec, check bool, logger *slog.Logger) (pipeline, error) {
	filter, err := compileFilter(spec.Filter, logger)
	if err != nil {
		return nil, err
	}
	ord := orderSpec{
		order:      spec.Order,
		sortKey:    spec.SortKey,
		descending: spec.Descending,
		collate:    spec.Collate,
	}

	if spec.Map == "" {
		d := &driver[*Item]{
			show:   func(it *Item) value.Value { return it.Peek() },
			key:    func(it *Item) value.Record { return it.Data() },
			logger: logger,
		}
		o, err := d.order(ord)
		if err != nil {
			return nil, err
		}
		d.tr, err = transform.New(src, transform.Config[*Item, *Item]{
			Filter:          filter,
			Order:           o,
			CheckInvariants: check,
			Logger:          logger,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	mapExpr, err := expr.Compile(spec.Map)
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	d := &driver[*Row]{
		show:   func(r *Row) value.Value { return r.val },
		key:    func(r *Row) value.Record { return asRecord(r.val) },
		logger: logger,
	}
	o, err := d.order(ord)
	if err != nil {
		return nil, err
	}
	d.tr, err = transform.New(src, transform.Config[*Item, *Row]{
		Mapper: func(it *Item) *Row {
			v, err := mapExpr.Eval(it.Peek())
			if err != nil {
				logger.Warn("map evaluation failed", "map", spec.Map, "error", err)
				v = value.Null{}
			}
			return &Row{item: it, val: v}
		},
		Equivalence:     func(it *Item, r *Row) bool { return r.item == it },
		Filter:          filter,
		Order:           o,
		CheckInvariants: check,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// compileFilter turns a filter expression into a predicate over item data.
// An expression that fails for an item excludes it.
func compileFilter(src string, logger *slog.Logger) (func(*Item) bool, error) {
	if src == "" {
		return nil, nil
	}
	e, err := expr.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return func(it *Item) bool {
		ok, err := e.Bool(it.Data())
		if err != nil {
			logger.Warn("filter evaluation failed", "filter", src, "error", err)
			return false
		}
		return ok
	}, nil
}

func asRecord(v value.Value) value.Record {
	if r, ok := v.(value.Record); ok {
		return r
	}
	return value.Record{"value": v}
}
