package transform

import (
	"cmp"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/reactive"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRuntime() *reactive.Runtime {
	return reactive.NewRuntime(reactive.WithLogger(quietLogger()))
}

func isEven(n int) bool { return n%2 == 0 }

func cellValues(cells []*reactive.Cell[int]) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Peek()
	}
	return out
}

func cells(rt *reactive.Runtime, vs ...int) []*reactive.Cell[int] {
	out := make([]*reactive.Cell[int], len(vs))
	for i, v := range vs {
		out[i] = reactive.NewCell(rt, v)
	}
	return out
}

func assertConsistent[S, T any](t *testing.T, tr *Transform[S, T]) {
	t.Helper()
	require.NoError(t, tr.Verify())
	assert.Zero(t, tr.Stats().InvariantViolations)
}

func TestPreserveSource_PushAndRemove(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3)
	tr, err := New(src, Config[int, int]{CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, tr.Items())

	src.Push(4)
	assert.Equal(t, []int{1, 2, 3, 4}, tr.Items())

	src.RemoveAt(1)
	assert.Equal(t, []int{1, 3, 4}, tr.Items())
	assertConsistent(t, tr)
}

func TestPreserveSource_FilteredInsert(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3, 4)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, tr.Items())

	src.InsertAt(2, 6)
	assert.Equal(t, []int{1, 2, 6, 3, 4}, src.Peek())
	assert.Equal(t, []int{2, 6, 4}, tr.Items())

	src.InsertAt(0, 8)
	assert.Equal(t, []int{8, 2, 6, 4}, tr.Items())

	src.Push(10)
	assert.Equal(t, []int{8, 2, 6, 4, 10}, tr.Items())

	src.InsertAt(1, 3)
	assert.Equal(t, []int{8, 2, 6, 4, 10}, tr.Items())
	assertConsistent(t, tr)
}

func TestPreserveSource_FilteredDelete(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3, 4, 5, 6)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	src.RemoveAt(2) // 3, excluded
	assert.Equal(t, []int{2, 4, 6}, tr.Items())

	src.RemoveAt(2) // 4
	assert.Equal(t, []int{2, 6}, tr.Items())
	assertConsistent(t, tr)
}

func TestPreserveSource_Duplicates(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 2, 1, 2)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, tr.Items())

	src.InsertAt(3, 4)
	src.InsertAt(2, 6)
	assert.Equal(t, []int{2, 1, 6, 2, 4}, src.Peek())
	assert.Equal(t, []int{2, 6, 2, 4}, tr.Items())

	src.RemoveAt(3)
	assert.Equal(t, []int{2, 6, 4}, tr.Items())
	assertConsistent(t, tr)
}

func TestUnordered_MappedLengths(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), "a", "bb", "ccc")
	tr, err := New(src, Config[string, int]{
		Mapper:          func(s string) int { return len(s) },
		Equivalence:     func(s string, n int) bool { return n == len(s) },
		Order:           Unordered[int](),
		CheckInvariants: true,
		Logger:          quietLogger(),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, tr.Items())

	src.Push("d")
	assert.ElementsMatch(t, []int{1, 2, 3, 1}, tr.Items())
	assert.Equal(t, 1, tr.Items()[len(tr.Items())-1], "new elements are appended")

	src.RemoveAt(0)
	assert.ElementsMatch(t, []int{2, 3, 1}, tr.Items())
	assertConsistent(t, tr)
}

func TestUnordered_NoFilterDeletesByValue(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3)
	tr, err := New(src, Config[int, int]{Order: Unordered[int](), CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	src.Reverse()
	assert.Equal(t, []int{1, 2, 3}, tr.Items(), "reorders do not touch an unordered output")
	assert.Equal(t, 1, tr.Stats().IgnoredReorders)

	src.RemoveAt(0) // 3, which sits at the end of the output
	assert.Equal(t, []int{1, 2}, tr.Items())
	assertConsistent(t, tr)
}

func TestCustom_SortedOnPush(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 3, 1, 2)
	tr, err := New(src, Config[int, int]{Order: Custom(cmp.Compare[int]), CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, tr.Items())

	src.Push(0)
	assert.Equal(t, []int{0, 1, 2, 3}, tr.Items())

	src.RemoveAt(0) // 3
	assert.Equal(t, []int{0, 1, 2}, tr.Items())
	assertConsistent(t, tr)
}

func TestCustom_SpliceSortsOnce(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 5, 1)
	tr, err := New(src, Config[int, int]{Order: Custom(cmp.Compare[int]), CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	var reorders int
	tr.Output().Subscribe(func(b reactive.Batch[int]) {
		if b.IsReorder() {
			reorders++
		}
	})

	src.Splice(1, 1, 4, 0, 9)
	assert.Equal(t, []int{0, 4, 5, 9}, tr.Items())
	assert.Equal(t, 1, reorders)
	assertConsistent(t, tr)
}

func TestCustom_StableForTies(t *testing.T) {
	type pair struct{ key, id int }
	byKey := func(a, b pair) int { return cmp.Compare(a.key, b.key) }

	src := reactive.NewSequence(newRuntime(), pair{1, 1}, pair{0, 2}, pair{1, 3})
	tr, err := New(src, Config[pair, pair]{Order: Custom(byKey), Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, []pair{{0, 2}, {1, 1}, {1, 3}}, tr.Items())

	src.Push(pair{1, 4})
	assert.Equal(t, []pair{{0, 2}, {1, 1}, {1, 3}, {1, 4}}, tr.Items())
}

func TestPreserveSource_SpliceWithFilter(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3, 4, 5, 6)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	src.Splice(1, 3, 8, 7, 10)
	assert.Equal(t, []int{1, 8, 7, 10, 5, 6}, src.Peek())
	assert.Equal(t, []int{8, 10, 6}, tr.Items())

	src.Set(0, 12)
	assert.Equal(t, []int{12, 8, 10, 6}, tr.Items())

	src.Clear()
	assert.Empty(t, tr.Items())
	assertConsistent(t, tr)
}

func TestPreserveSource_ReorderFallsBackToResync(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3, 4, 5, 6)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	src.Reverse()
	assert.Equal(t, []int{6, 4, 2}, tr.Items())

	src.SortFunc(cmp.Compare[int])
	assert.Equal(t, []int{2, 4, 6}, tr.Items())

	src.Move(5, 0) // 6 to the front
	assert.Equal(t, []int{6, 2, 4}, tr.Items())

	assert.Equal(t, 3, tr.Stats().ReorderFallbacks)
	assertConsistent(t, tr)
}

func TestMapper_CalledOncePerEntry(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), "a", "bb", "ccc")
	calls := 0
	tr, err := New(src, Config[string, int]{
		Mapper: func(s string) int {
			calls++
			return len(s)
		},
		Equivalence: func(s string, n int) bool { return n == len(s) },
		Logger:      quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	src.Push("dddd")
	assert.Equal(t, 4, calls)

	src.RemoveAt(0)
	src.Reverse()
	tr.Resync()
	assert.Equal(t, 4, calls, "removals, reorders and resyncs reuse mapped elements")
	assert.Equal(t, []int{4, 3, 2}, tr.Items())
	assert.Equal(t, 4, tr.Stats().MapperCalls)
}

func TestResync_Idempotent(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 5, 3, 4, 1)
	for _, order := range []Order[int]{PreserveSource[int](), Unordered[int](), Custom(cmp.Compare[int])} {
		t.Run(order.String(), func(t *testing.T) {
			tr, err := New(src, Config[int, int]{Filter: func(n int) bool { return n > 1 }, Order: order, Logger: quietLogger()})
			require.NoError(t, err)
			defer tr.Close()

			var batches int
			tr.Output().Subscribe(func(reactive.Batch[int]) { batches++ })

			before := tr.Items()
			tr.Resync()
			tr.Resync()
			assert.Equal(t, before, tr.Items())
			assert.Zero(t, batches)
		})
	}
}

func TestTransform_OutputBatches(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3)
	tr, err := New(src, Config[int, int]{Logger: quietLogger()})
	require.NoError(t, err)

	var got []reactive.Batch[int]
	tr.Output().Subscribe(func(b reactive.Batch[int]) { got = append(got, b) })

	src.Push(4)
	require.Len(t, got, 1)
	assert.Equal(t, []reactive.Change[int]{{Kind: reactive.Added, Index: 3, Value: 4}}, got[0].Changes)
	assert.Equal(t, []int{1, 2, 3, 4}, got[0].Items)
}

func TestTransform_Chained(t *testing.T) {
	src := reactive.NewSequence(newRuntime(), 1, 2, 3, 4)
	evens, err := New(src, Config[int, int]{Filter: isEven, Logger: quietLogger()})
	require.NoError(t, err)
	desc, err := New(evens.Output(), Config[int, int]{
		Order:  Custom(func(a, b int) int { return cmp.Compare(b, a) }),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2}, desc.Items())

	src.Push(6)
	src.Unshift(8)
	assert.Equal(t, []int{8, 6, 4, 2}, desc.Items())

	src.RemoveAt(2) // 2
	assert.Equal(t, []int{8, 6, 4}, desc.Items())
}

func TestTransform_BatchedMutations(t *testing.T) {
	rt := newRuntime()
	src := reactive.NewSequence(rt, 1, 2, 3)
	tr, err := New(src, Config[int, int]{Filter: isEven, CheckInvariants: true, Logger: quietLogger()})
	require.NoError(t, err)

	rt.Batch(func() {
		src.Push(4)
		src.RemoveAt(0)
		src.Unshift(6)
		assert.Equal(t, []int{2}, tr.Items(), "nothing is applied inside a batch")
	})
	assert.Equal(t, []int{6, 2, 4}, tr.Items())
	assertConsistent(t, tr)
}

func TestTransform_Close(t *testing.T) {
	rt := newRuntime()
	cs := cells(rt, 1, 2)
	src := reactive.NewSequence(rt, cs...)
	tr, err := New(src, Config[*reactive.Cell[int], *reactive.Cell[int]]{
		Filter: func(c *reactive.Cell[int]) bool { return isEven(c.Get()) },
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, src.Subscribers())

	tr.Close()
	assert.True(t, tr.Closed())
	assert.Zero(t, src.Subscribers())

	src.Push(reactive.NewCell(rt, 4))
	cs[0].Set(8)
	assert.Equal(t, []int{2}, cellValues(tr.Items()))
	assert.Zero(t, tr.Stats().ProbeFirings)
}
