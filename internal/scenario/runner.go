package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tracksync/internal/expr"
	"github.com/roach88/tracksync/internal/reactive"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/value"
)

// EngineVersion is recorded with every journaled run.
const EngineVersion = "0.1.0"

// Options configures a scenario run.
type Options struct {
	// Store journals the run when set.
	Store *store.Store

	// IDs supplies the run id when the scenario does not fix one.
	// Defaults to UUIDv7Generator.
	IDs IDGenerator

	// Logger receives run diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// runner holds the state of one scenario execution.
type runner struct {
	sc     *Scenario
	opts   Options
	logger *slog.Logger

	rt    *reactive.Runtime
	src   *reactive.Sequence[*Item]
	pipe  pipeline
	order string

	result *Result
}

// Run executes a scenario and returns the result.
//
// Failed expectations and invalid steps are reported in the result. An
// error is returned only when the scenario cannot run at all (bad initial
// items, transform construction, journal writes).
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}

	rt := reactive.NewRuntime(reactive.WithLogger(logger))
	items := make([]*Item, 0, len(sc.Items))
	for i, raw := range sc.Items {
		rec, err := value.RecordFromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, newItem(rt, rec))
	}
	src := reactive.NewSequence(rt, items...)

	pipe, err := newPipeline(src, sc.Transform, sc.checkInvariants(), logger)
	if err != nil {
		return nil, fmt.Errorf("build transform: %w", err)
	}
	defer pipe.close()

	runID := sc.RunID
	if runID == "" {
		runID = ids.Generate()
	}

	r := &runner{
		sc:     sc,
		opts:   opts,
		logger: logger.With("scenario", sc.Name, "run_id", runID),
		rt:     rt,
		src:    src,
		pipe:   pipe,
		order:  sc.Transform.Order,
		result: NewResult(runID, sc.Name),
	}

	if opts.Store != nil {
		err := opts.Store.WriteRun(ctx, store.Run{
			ID:            runID,
			Scenario:      sc.Name,
			ScenarioHash:  sc.Hash,
			Order:         orderName(sc.Transform.Order),
			EngineVersion: EngineVersion,
		})
		if err != nil {
			return nil, err
		}
	}

	r.logger.Info("scenario started", "items", len(items), "steps", len(sc.Steps))

	if err := r.record(ctx, 0, "init", sc.Expect); err != nil {
		return nil, err
	}
	for i, st := range sc.Steps {
		if err := r.apply(st); err != nil {
			r.result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, st.Op, err))
			r.logger.Warn("step failed, aborting run", "step", i, "op", st.Op, "error", err)
			break
		}
		if err := r.record(ctx, int64(i+1), st.Op, st.Expect); err != nil {
			return nil, err
		}
	}

	if err := rt.Err(); err != nil {
		r.result.AddError(err.Error())
	}
	r.result.Stats = pipe.stats()

	if opts.Store != nil {
		status := store.StatusPassed
		if !r.result.Pass {
			status = store.StatusFailed
		}
		if err := opts.Store.FinishRun(ctx, runID, status); err != nil {
			return nil, err
		}
	}

	r.logger.Info("scenario finished",
		"pass", r.result.Pass,
		"errors", len(r.result.Errors),
		"resyncs", r.result.Stats.Resyncs,
	)
	return r.result, nil
}

// record appends a trace event for the current output, checks expect and
// invariants, and journals the step.
func (r *runner) record(ctx context.Context, seq int64, op string, expect []any) error {
	out := r.pipe.render()
	hash, err := value.SnapshotHash(out)
	if err != nil {
		return fmt.Errorf("hash output: %w", err)
	}
	ev := TraceEvent{
		Seq:        seq,
		Op:         op,
		Output:     out,
		OutputHash: hash,
		Stats:      statsRecord(r.pipe.stats()),
	}
	r.result.Trace = append(r.result.Trace, ev)
	r.logger.Debug("step applied", "seq", seq, "op", op, "output_len", len(out))

	if expect != nil {
		if err := checkExpect(expect, out, r.order == OrderUnordered); err != nil {
			r.result.AddError(fmt.Sprintf("step %d (%s): %v", seq, op, err))
		}
	}
	if r.sc.checkInvariants() {
		if err := r.pipe.verify(); err != nil {
			r.result.AddError(fmt.Sprintf("step %d (%s): %v", seq, op, err))
		}
	}

	if r.opts.Store != nil {
		step := store.Step{
			RunID:      r.result.RunID,
			Seq:        seq,
			Op:         op,
			Output:     out,
			OutputHash: hash,
			Stats:      ev.Stats,
		}
		if err := r.opts.Store.WriteStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one step. Structural panics from the source (indices the
// validator could not know about) are returned as errors.
func (r *runner) apply(st Step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()

	if st.Op != OpBatch {
		return r.applyOne(st)
	}
	r.rt.Batch(func() {
		for i, nested := range st.Steps {
			if err = r.applyOne(nested); err != nil {
				err = fmt.Errorf("steps[%d] %s: %w", i, nested.Op, err)
				return
			}
		}
	})
	return err
}

func (r *runner) applyOne(st Step) error {
	n := len(r.src.Peek())
	switch st.Op {
	case OpPush:
		it, err := r.newItem(st.Item)
		if err != nil {
			return err
		}
		r.src.Push(it)
	case OpUnshift:
		it, err := r.newItem(st.Item)
		if err != nil {
			return err
		}
		r.src.Unshift(it)
	case OpInsert:
		if err := checkIndex(*st.Index, n+1); err != nil {
			return err
		}
		it, err := r.newItem(st.Item)
		if err != nil {
			return err
		}
		r.src.InsertAt(*st.Index, it)
	case OpRemove:
		if err := checkIndex(*st.Index, n); err != nil {
			return err
		}
		r.src.RemoveAt(*st.Index)
	case OpSplice:
		if err := checkIndex(*st.Index, n+1); err != nil {
			return err
		}
		items := make([]*Item, 0, len(st.Items))
		for _, raw := range st.Items {
			it, err := r.newItem(raw)
			if err != nil {
				return err
			}
			items = append(items, it)
		}
		r.src.Splice(*st.Index, st.Count, items...)
	case OpMove:
		if err := checkIndex(*st.From, n); err != nil {
			return err
		}
		if err := checkIndex(*st.To, n); err != nil {
			return err
		}
		r.src.Move(*st.From, *st.To)
	case OpSort:
		cmp, err := expr.NewComparator(st.Key,
			expr.Descending(st.Descending),
			expr.WithCollation(st.Collate),
			expr.WithComparatorLogger(r.logger),
		)
		if err != nil {
			return err
		}
		r.src.SortFunc(func(a, b *Item) int { return cmp.Compare(a.Peek(), b.Peek()) })
	case OpReverse:
		r.src.Reverse()
	case OpSet:
		if err := checkIndex(*st.Index, n); err != nil {
			return err
		}
		it, err := r.newItem(st.Item)
		if err != nil {
			return err
		}
		r.src.Set(*st.Index, it)
	case OpClear:
		r.src.Clear()
	case OpUpdate:
		if err := checkIndex(*st.Index, n); err != nil {
			return err
		}
		patch, err := value.RecordFromAny(st.Patch)
		if err != nil {
			return fmt.Errorf("patch: %w", err)
		}
		r.src.Peek()[*st.Index].Update(patch)
	case OpSetFilter:
		filter, err := compileFilter(st.Filter, r.logger)
		if err != nil {
			return err
		}
		r.pipe.setFilter(filter)
	case OpSetOrder:
		err := r.pipe.setOrder(orderSpec{
			order:      st.Order,
			sortKey:    st.SortKey,
			descending: st.Descending,
			collate:    st.Collate,
		})
		if err != nil {
			return err
		}
		r.order = st.Order
	case OpResync:
		r.pipe.resync()
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (r *runner) newItem(raw map[string]any) (*Item, error) {
	rec, err := value.RecordFromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("item: %w", err)
	}
	return newItem(r.rt, rec), nil
}

func checkIndex(i, limit int) error {
	if i < 0 || i >= limit {
		return fmt.Errorf("index %d out of range [0,%d)", i, limit)
	}
	return nil
}

func orderName(order string) string {
	if order == "" {
		return OrderPreserve
	}
	return order
}
