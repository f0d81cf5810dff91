package spine

import (
	"math"

	"github.com/flowspine/spine/internal/queue"
)

// Spine is a log-structured, fueled, append-only trace. B is the concrete
// batch type, self-referentially constrained so that merges stay
// monomorphised. K, V are the update tuple's key and value; T is the
// partially-ordered timestamp; R is the difference.
//
// A *Spine is owned by exactly one dataflow operator. See the package doc
// for the concurrency model.
type Spine[B Batch[B, K, V, T, R], K, V, T, R any] struct {
	operator  OperatorInfo
	logger    Logger
	activator Activator
	effort    int

	lessEqual lessEqualFunc[T]
	minimum   T
	builder   Builder[B, T]

	layers  []layer[B, K, V, T, R]
	pending *queue.Queue[B]

	upper           []T
	advanceFrontier []T
	throughFrontier []T
}

// New constructs a Spine with an initial upper of [defaultT] and initial
// advance/through frontiers of [minimum]. lessEqual must implement the
// partial order over T; builder is used only by [Spine.Close] and may be
// nil if the caller never closes this trace.
func New[B Batch[B, K, V, T, R], K, V, T, R any](
	operator OperatorInfo,
	lessEqual func(a, b T) bool,
	minimum T,
	defaultT T,
	builder Builder[B, T],
	opts ...Option[B, T],
) *Spine[B, K, V, T, R] {
	if lessEqual == nil {
		panic("spine: New: lessEqual must not be nil")
	}
	cfg := resolveOptions(opts)
	return &Spine[B, K, V, T, R]{
		operator:        operator,
		logger:          cfg.logger,
		activator:       cfg.activator,
		effort:          cfg.effort,
		lessEqual:       lessEqual,
		minimum:         minimum,
		builder:         builder,
		pending:         queue.New[B](8),
		upper:           []T{defaultT},
		advanceFrontier: []T{minimum},
		throughFrontier: []T{minimum},
	}
}

// Upper returns the frontier at or after which the spine holds no updates.
func (s *Spine[B, K, V, T, R]) Upper() []T { return cloneFrontier(s.upper) }

// Insert appends batch to the trace. Precondition: batch.Lower() equals
// Upper() and batch.Lower() does not equal batch.Upper(). Violations panic.
func (s *Spine[B, K, V, T, R]) Insert(batch B) {
	lower, upper := batch.Lower(), batch.Upper()
	if equalAntichains(lower, upper, s.lessEqual) {
		panicEmptyBatch()
	}
	if !equalAntichains(lower, s.upper, s.lessEqual) {
		panicContiguity(lower, s.upper)
	}
	s.upper = cloneFrontier(upper)
	s.logger.LogBatch(BatchEvent{Operator: s.operator, Lower: len(lower), Upper: len(upper), Len: batch.Len()})
	s.pending.PushBack(batch)
	s.considerMerges()
}

// Close marks the trace as terminated: it synthesises an empty sentinel
// batch with lower and upper both equal to the current Upper(), inserts it,
// and then sets Upper() to the empty antichain. A second call is a no-op,
// per the idempotence law upper()==[] implies closed.
func (s *Spine[B, K, V, T, R]) Close() {
	if len(s.upper) == 0 {
		return
	}
	if s.builder == nil {
		panic("spine: Close: no Builder configured")
	}
	old := cloneFrontier(s.upper)
	batch := s.builder.Done(old, old)
	s.logger.LogBatch(BatchEvent{Operator: s.operator, Lower: len(old), Upper: len(old), Len: batch.Len()})
	s.pending.PushBack(batch)
	s.upper = nil
	s.considerMerges()
}

// Exert applies effort units of fuel to merges already in progress, without
// introducing new data.
func (s *Spine[B, K, V, T, R]) Exert(effort int) {
	fuel := Fuel(effort)
	s.applyFuel(&fuel)
}

// AdvanceBy sets the compaction frontier. An empty frontier drops all held
// state: the trace will never be read again.
func (s *Spine[B, K, V, T, R]) AdvanceBy(frontier []T) {
	s.advanceFrontier = cloneFrontier(frontier)
	if len(s.advanceFrontier) == 0 {
		s.pending = queue.New[B](8)
		s.layers = nil
	}
}

// DistinguishSince sets the through-frontier and attempts to drain pending
// batches into layers.
func (s *Spine[B, K, V, T, R]) DistinguishSince(frontier []T) {
	s.throughFrontier = cloneFrontier(frontier)
	s.considerMerges()
}

// MapBatches visits every live batch, layers top-down then pending in
// insertion order.
func (s *Spine[B, K, V, T, R]) MapBatches(f func(B)) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := &s.layers[i]
		switch l.state {
		case layerDouble:
			f(l.b1)
			f(l.b2)
		case layerSingle:
			f(l.b1)
		}
	}
	s.pending.Each(f)
}

// Describe reports the state of each layer in index order: 0 for Vacant, 1
// for Single, 2 for Double. It exists for diagnostics and testing.
func (s *Spine[B, K, V, T, R]) Describe() []int {
	out := make([]int, len(s.layers))
	for i := range s.layers {
		switch s.layers[i].state {
		case layerSingle:
			out[i] = 1
		case layerDouble:
			out[i] = 2
		}
	}
	return out
}

// PendingLen reports the number of batches awaiting promotion into layers.
func (s *Spine[B, K, V, T, R]) PendingLen() int {
	return s.pending.Len()
}

// considerMerges drains pending batches whose upper is dominated by the
// through-frontier into the layer array, fueling merges as it goes.
func (s *Spine[B, K, V, T, R]) considerMerges() {
	for s.pending.Len() > 0 && dominates(s.throughFrontier, s.pending.Front().Upper(), s.lessEqual) {
		batch := s.pending.PopFront()
		idx := batchIndex(batch.Len())
		s.introduceBatch(batch, idx)

		if len(s.layers) > 2 {
			active := false
			for i := 0; i < len(s.layers)-1; i++ {
				if !s.layers[i].isVacant() {
					active = true
					break
				}
			}
			if active && s.activator != nil {
				s.activator.Activate()
			}
		}
	}
}

// batchIndex computes ceil(log2(n)), clamped to 0 for n <= 1.
func batchIndex(n int) int {
	if n <= 1 {
		return 0
	}
	idx := 0
	size := 1
	for size < n {
		size <<= 1
		idx++
	}
	return idx
}

// introduceBatch installs batch at layer index i, applying fuel to
// in-progress merges first and forcibly rolling up layers below i if
// necessary to keep i vacant.
func (s *Spine[B, K, V, T, R]) introduceBatch(batch B, i int) {
	fuel := Fuel((1 << uint(i)) * s.effort * len(s.layers))
	s.applyFuel(&fuel)
	s.rollUp(i)
	s.insertAt(batch, i)
	s.tidyLayers()
}

// applyFuel walks layers bottom-up, giving the remaining fuel to every
// in-progress merge. A merge that completes within budget is promoted one
// layer up, which may itself complete immediately on the next iteration if
// that layer is a fresh Double already holding full fuel — in practice this
// cascades via insertAt appending a new Single or Double above the
// originally scanned range.
func (s *Spine[B, K, V, T, R]) applyFuel(fuel *Fuel) {
	n := len(s.layers)
	for i := 0; i < n; i++ {
		l := &s.layers[i]
		if !l.isDouble() {
			continue
		}
		out, done := l.work(fuel)
		if !done {
			continue
		}
		s.logger.LogMerge(MergeEvent{Operator: s.operator, Layer: i, Phase: MergeEnd, Len: out.Len()})
		s.insertAt(out, i+1)
	}
}

// rollUp forces every layer at or below index to completion, folding the
// results together in ascending layer order (newest batch first; each
// older, higher-layer batch begins the merge with the accumulator) so the
// combined result may be installed at index+1.
func (s *Spine[B, K, V, T, R]) rollUp(index int) {
	for len(s.layers) <= index {
		s.layers = append(s.layers, layer[B, K, V, T, R]{})
	}

	var acc B
	haveAcc := false
	for k := 0; k <= index; k++ {
		l := &s.layers[k]
		wasDouble := l.isDouble()
		out, ok := l.complete()
		if !ok {
			continue
		}
		if wasDouble {
			s.logger.LogMerge(MergeEvent{Operator: s.operator, Layer: k, Phase: MergeEnd, Len: out.Len()})
		}
		if !haveAcc {
			acc = out
			haveAcc = true
			continue
		}
		s.logger.LogMerge(MergeEvent{Operator: s.operator, Layer: index + 1, Phase: MergeBegin})
		merger := out.BeginMerge(acc)
		huge := Fuel(math.MaxInt)
		merger.Work(out, acc, nil, &huge)
		if huge <= 0 {
			panicStuckMerger()
		}
		acc = merger.Done()
		s.logger.LogMerge(MergeEvent{Operator: s.operator, Layer: index + 1, Phase: MergeEnd, Len: acc.Len()})
	}

	if haveAcc {
		s.insertAt(acc, index+1)
	}
}

// insertAt installs batch at the given layer index, growing the layer
// array with Vacant layers as needed. If index lands on the new topmost
// layer, the current compaction frontier is attached to the merge that
// insertion may begin.
func (s *Spine[B, K, V, T, R]) insertAt(batch B, index int) {
	for len(s.layers) <= index {
		s.layers = append(s.layers, layer[B, K, V, T, R]{})
	}
	var frontier []T
	if index == len(s.layers)-1 {
		frontier = cloneFrontier(s.advanceFrontier)
	}
	l := &s.layers[index]
	wasSingle := l.isSingle()
	l.insert(batch, frontier)
	if wasSingle {
		s.logger.LogMerge(MergeEvent{Operator: s.operator, Layer: index, Phase: MergeBegin})
	}
}

// tidyLayers draws the topmost layer down while it remains a Single whose
// batchIndex of its physical length is below the current layer count and
// the layer beneath it is Vacant.
func (s *Spine[B, K, V, T, R]) tidyLayers() {
	length := len(s.layers)
	if length == 0 || !s.layers[length-1].isSingle() {
		return
	}
	for {
		top := &s.layers[length-1]
		if batchIndex(top.len()) >= length || length <= 1 || !s.layers[length-2].isVacant() {
			return
		}
		moved := *top
		s.layers = s.layers[:length-1]
		s.layers[length-2] = moved
		length = len(s.layers)
	}
}
