package spine

import "container/heap"

// CursorThrough builds a multiway cursor over every batch whose range lies
// entirely at or below upper. keyLess orders the merge by key; it need only
// be a strict weak ordering, not a total order over K.
//
// Preconditions: the trace must not be closed (AdvanceBy([]) not yet
// called), and upper must be dominated by the through-frontier set by the
// most recent DistinguishSince. A caller-supplied upper that bisects a
// pending batch is a fatal contract violation. storage retains a clone of
// every batch the returned cursor reads from; the caller must keep storage
// alive for as long as it uses the cursor.
func (s *Spine[B, K, V, T, R]) CursorThrough(upper []T, keyLess func(a, b K) bool) (*CursorList[K, V, T, R], []B) {
	if len(s.advanceFrontier) == 0 {
		panicClosedTrace()
	}
	if !dominates(upper, s.throughFrontier, s.lessEqual) {
		panicBelowThroughFrontier()
	}

	var cursors []Cursor[K, V, T, R]
	var storage []B

	for i := len(s.layers) - 1; i >= 0; i-- {
		l := &s.layers[i]
		switch l.state {
		case layerDouble:
			if !l.b1.IsEmpty() {
				cursors = append(cursors, l.b1.Cursor())
				storage = append(storage, l.b1.Clone())
			}
			if !l.b2.IsEmpty() {
				cursors = append(cursors, l.b2.Cursor())
				storage = append(storage, l.b2.Clone())
			}
		case layerSingle:
			if !l.b1.IsEmpty() {
				cursors = append(cursors, l.b1.Cursor())
				storage = append(storage, l.b1.Clone())
			}
		}
	}

	s.pending.Each(func(b B) {
		if b.IsEmpty() {
			return
		}

		includeLower := dominates(upper, b.Lower(), s.lessEqual)
		includeUpper := dominates(upper, b.Upper(), s.lessEqual)

		// The asymmetric fallback against b.Lower() (rather than re-checking
		// includeLower/includeUpper some other way) is inherited as-is from
		// the source algorithm; it is not obviously correct for a frontier
		// that is only a partial, not total, order.
		if includeLower != includeUpper && !equalAntichains(upper, b.Lower(), s.lessEqual) {
			panicStraddlingCursor()
		}

		if includeUpper {
			cursors = append(cursors, b.Cursor())
			storage = append(storage, b.Clone())
		}
	})

	return NewCursorList(cursors, keyLess), storage
}

// CursorList is a multiway merge over a fixed set of cursors, ordered by
// key. It is itself a [Cursor], so it can be nested inside another
// CursorList if ever needed.
type CursorList[K, V, T, R any] struct {
	h *cursorHeap[K, V, T, R]
}

// NewCursorList builds a CursorList over cursors, discarding any that are
// already invalid. less need only be a strict weak ordering over K.
func NewCursorList[K, V, T, R any](cursors []Cursor[K, V, T, R], less func(a, b K) bool) *CursorList[K, V, T, R] {
	if less == nil {
		panic("spine: NewCursorList: less must not be nil")
	}
	h := &cursorHeap[K, V, T, R]{less: less}
	for _, c := range cursors {
		if c.Valid() {
			h.items = append(h.items, c)
		}
	}
	heap.Init(h)
	return &CursorList[K, V, T, R]{h: h}
}

func (cl *CursorList[K, V, T, R]) Valid() bool { return cl.h.Len() > 0 }
func (cl *CursorList[K, V, T, R]) Key() K      { return cl.h.items[0].Key() }
func (cl *CursorList[K, V, T, R]) Val() V      { return cl.h.items[0].Val() }
func (cl *CursorList[K, V, T, R]) Time() T     { return cl.h.items[0].Time() }
func (cl *CursorList[K, V, T, R]) Diff() R     { return cl.h.items[0].Diff() }

// Next advances the cursor currently at the front of the merge order.
func (cl *CursorList[K, V, T, R]) Next() {
	if cl.h.Len() == 0 {
		return
	}
	top := cl.h.items[0]
	top.Next()
	if top.Valid() {
		heap.Fix(cl.h, 0)
	} else {
		heap.Pop(cl.h)
	}
}

// cursorHeap implements container/heap.Interface over a set of valid
// cursors ordered by key.
type cursorHeap[K, V, T, R any] struct {
	items []Cursor[K, V, T, R]
	less  func(a, b K) bool
}

func (h *cursorHeap[K, V, T, R]) Len() int { return len(h.items) }
func (h *cursorHeap[K, V, T, R]) Less(i, j int) bool {
	return h.less(h.items[i].Key(), h.items[j].Key())
}
func (h *cursorHeap[K, V, T, R]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *cursorHeap[K, V, T, R]) Push(x any) {
	h.items = append(h.items, x.(Cursor[K, V, T, R]))
}
func (h *cursorHeap[K, V, T, R]) Pop() any {
	n := len(h.items)
	v := h.items[n-1]
	h.items = h.items[:n-1]
	return v
}
