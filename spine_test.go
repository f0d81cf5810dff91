package spine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowspine/spine"
	"github.com/flowspine/spine/testtrace"
)

func newSpine() *spine.Spine[testtrace.Batch, int, int, uint64, int64] {
	return spine.New[testtrace.Batch, int, int, uint64, int64](
		spine.OperatorInfo{ID: 1, Name: "test"},
		testtrace.LessEqual,
		0,
		0,
		testtrace.Builder{},
	)
}

func drain(t *testing.T, cl *spine.CursorList[int, int, uint64, int64]) []testtrace.Tuple {
	t.Helper()
	var got []testtrace.Tuple
	for cl.Valid() {
		got = append(got, testtrace.Tuple{K: cl.Key(), V: cl.Val(), T: cl.Time(), R: cl.Diff()})
		cl.Next()
	}
	return got
}

// A single inserted batch, once distinguished, is fully visible through a
// cursor built at its upper frontier.
func TestSpine_SingleBatchCursor(t *testing.T) {
	s := newSpine()
	b := testtrace.NewBatch([]uint64{0}, []uint64{1}, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}})

	s.Insert(b)
	s.DistinguishSince([]uint64{1})

	cl, storage := s.CursorThrough([]uint64{1}, testtrace.KeyLess)
	got := drain(t, cl)
	require.Len(t, storage, 1)
	require.Equal(t, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}}, got)
}

// Two sequential batches, once distinguished and given ample fuel, are both
// drained out of the pending queue and remain fully readable as a union: no
// tuple is lost or duplicated regardless of how the merge tree happens to be
// shaped internally.
func TestSpine_SequentialBatchesDrainAndMerge(t *testing.T) {
	s := newSpine()
	b1 := testtrace.NewBatch([]uint64{0}, []uint64{1}, []testtrace.Tuple{
		{K: 1, V: 1, T: 0, R: 1},
		{K: 2, V: 1, T: 0, R: 1},
	})
	b2 := testtrace.NewBatch([]uint64{1}, []uint64{2}, []testtrace.Tuple{
		{K: 1, V: 2, T: 1, R: 1},
		{K: 3, V: 1, T: 1, R: 1},
	})

	s.Insert(b1)
	s.Insert(b2)
	s.DistinguishSince([]uint64{2})
	s.Exert(1 << 20)

	require.Equal(t, 0, s.PendingLen())

	cl, _ := s.CursorThrough([]uint64{2}, testtrace.KeyLess)
	got := drain(t, cl)
	require.ElementsMatch(t, []testtrace.Tuple{
		{K: 1, V: 1, T: 0, R: 1},
		{K: 2, V: 1, T: 0, R: 1},
		{K: 1, V: 2, T: 1, R: 1},
		{K: 3, V: 1, T: 1, R: 1},
	}, got)
}

// A third same-index insert forces roll-up to promote the first batch into
// a layer already holding the second, completing an actual Single->Double
// merge; exerting fuel then drains that Double back down to a single
// merged batch one layer up. This is the "hard engineering" the spine
// exists for: a pairwise merge that actually runs to completion under
// fuel, not just batches that individually sit in their own layers.
func TestSpine_FuelCompletesPairwiseMerge(t *testing.T) {
	s := newSpine()
	b1 := testtrace.NewBatch([]uint64{0}, []uint64{1}, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}})
	b2 := testtrace.NewBatch([]uint64{1}, []uint64{2}, []testtrace.Tuple{{K: 2, V: 1, T: 1, R: 1}})
	b3 := testtrace.NewBatch([]uint64{2}, []uint64{3}, []testtrace.Tuple{{K: 3, V: 1, T: 2, R: 1}})

	s.DistinguishSince([]uint64{3})
	s.Insert(b1) // layers: [Single(b1)]
	s.Insert(b2) // roll-up promotes b1 to layer 1, colliding with nothing yet: [Single(b2), Single(b1)]
	s.Insert(b3) // roll-up promotes b2 into layer 1, colliding with b1: Single(b1) -> Double(b1, b2)

	require.Equal(t, 0, s.PendingLen())
	require.Equal(t, []int{1, 2}, s.Describe(), "layer 1 must hold an in-progress Double after the third insert")

	s.Exert(1 << 20)
	require.Equal(t, []int{1, 0, 1}, s.Describe(), "the Double must complete under fuel and promote one layer up")

	cl, _ := s.CursorThrough([]uint64{3}, testtrace.KeyLess)
	got := drain(t, cl)
	require.ElementsMatch(t, []testtrace.Tuple{
		{K: 1, V: 1, T: 0, R: 1},
		{K: 2, V: 1, T: 1, R: 1},
		{K: 3, V: 1, T: 2, R: 1},
	}, got)
}

// A batch sized to land at a deep layer index still drains and remains fully
// readable once fuel is supplied, exercising the fold/roll-up path at a
// nontrivial layer.
func TestSpine_DeepLayerFuelBoundedProgress(t *testing.T) {
	s := newSpine()

	const n = 1024
	tuples := make([]testtrace.Tuple, n)
	for i := range tuples {
		tuples[i] = testtrace.Tuple{K: i, V: 1, T: 0, R: 1}
	}
	a := testtrace.NewBatch([]uint64{0}, []uint64{1}, tuples)

	// The batch's own upper is [1], so the through-frontier must be
	// dominated by [1] too (not some frontier ahead of all data the trace
	// will ever hold) for CursorThrough([1], ...) to be legal.
	s.DistinguishSince([]uint64{1})
	s.Insert(a)
	s.Exert(1 << 20)

	require.Equal(t, 0, s.PendingLen())

	total := 0
	for _, st := range s.Describe() {
		if st != 0 {
			total++
		}
	}
	require.GreaterOrEqual(t, total, 1, "some layer should hold the inserted data")

	cl, _ := s.CursorThrough([]uint64{1}, testtrace.KeyLess)
	got := drain(t, cl)
	require.Len(t, got, n)
}

// A batch that straddles the caller's requested upper while still sitting in
// the pending queue is a fatal contract violation.
func TestSpine_StraddlingCursorPanics(t *testing.T) {
	s := newSpine()
	b := testtrace.NewBatch([]uint64{0}, []uint64{2}, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}})
	s.Insert(b)

	require.Panics(t, func() {
		s.CursorThrough([]uint64{1}, testtrace.KeyLess)
	})
}

// Advancing to the empty frontier drops all held state; the trace is
// permanently unreadable afterward.
func TestSpine_AdvanceByEmptyDropsTrace(t *testing.T) {
	s := newSpine()
	b := testtrace.NewBatch([]uint64{0}, []uint64{1}, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}})
	s.Insert(b)

	s.AdvanceBy(nil)

	require.Equal(t, 0, s.PendingLen())
	require.Panics(t, func() {
		s.CursorThrough([]uint64{1}, testtrace.KeyLess)
	})
}

// Close synthesises an empty sentinel batch at the current upper and then
// sets Upper() to the empty antichain; a second Close is a no-op.
func TestSpine_CloseSynthesisesSentinel(t *testing.T) {
	s := newSpine()
	b := testtrace.NewBatch([]uint64{0}, []uint64{5}, []testtrace.Tuple{{K: 1, V: 1, T: 0, R: 1}})
	s.Insert(b)
	require.Equal(t, []uint64{5}, s.Upper())

	s.Close()
	require.Empty(t, s.Upper())

	var sawSentinel bool
	s.MapBatches(func(bb testtrace.Batch) {
		if bb.IsEmpty() && len(bb.Lower()) == 1 && bb.Lower()[0] == 5 {
			sawSentinel = true
		}
	})
	require.True(t, sawSentinel)

	s.Close() // idempotent
	require.Empty(t, s.Upper())
}

// Insert rejects a batch whose lower does not match the trace's current
// upper.
func TestSpine_InsertRejectsDiscontiguousBatch(t *testing.T) {
	s := newSpine()
	bad := testtrace.NewBatch([]uint64{1}, []uint64{2}, []testtrace.Tuple{{K: 1, V: 1, T: 1, R: 1}})
	require.Panics(t, func() {
		s.Insert(bad)
	})
}

// Insert rejects a batch whose lower equals its upper, i.e. claims to be
// non-empty while describing an empty time range.
func TestSpine_InsertRejectsEmptyRangeBatch(t *testing.T) {
	s := newSpine()
	bad := testtrace.NewBatch([]uint64{0}, []uint64{0}, nil)
	require.Panics(t, func() {
		s.Insert(bad)
	})
}
