package spine

import "math"

// layer holds the merge state for one level of a [Spine]. The zero value is
// Vacant.
type layer[B Batch[B, K, V, T, R], K, V, T, R any] struct {
	state layerState
	b1    B
	b2    B
	// frontier is the compaction frontier captured when this Double began,
	// or nil if this layer was not the topmost layer at that time.
	frontier []T
	merger   Merger[B, T]
}

type layerState uint8

const (
	layerVacant layerState = iota
	layerSingle
	layerDouble
)

func (l *layer[B, K, V, T, R]) isVacant() bool { return l.state == layerVacant }
func (l *layer[B, K, V, T, R]) isSingle() bool { return l.state == layerSingle }
func (l *layer[B, K, V, T, R]) isDouble() bool { return l.state == layerDouble }

// len reports the physical size of the layer: the sum of Len() over the
// batches it holds, or 0 when Vacant.
func (l *layer[B, K, V, T, R]) len() int {
	switch l.state {
	case layerSingle:
		return l.b1.Len()
	case layerDouble:
		return l.b1.Len() + l.b2.Len()
	default:
		return 0
	}
}

// insert transitions Vacant -> Single(b) or Single(b1) -> Double(b1, b,
// frontier, merger). Calling insert on a Double is a fatal logic error.
func (l *layer[B, K, V, T, R]) insert(b B, frontier []T) {
	switch l.state {
	case layerVacant:
		l.state = layerSingle
		l.b1 = b
	case layerSingle:
		old := l.b1
		var zero B
		l.b1 = zero
		m := old.BeginMerge(b)
		l.state = layerDouble
		l.b1 = old
		l.b2 = b
		l.frontier = frontier
		l.merger = m
	case layerDouble:
		panicDoubleInsert()
	}
}

// work advances an in-progress merge by up to *fuel units. If the merge
// completes within budget, the layer becomes Vacant and the finished batch
// is returned with ok true. Otherwise ok is false: either the layer was not
// a Double, or the merger consumed the entire budget without finishing.
func (l *layer[B, K, V, T, R]) work(fuel *Fuel) (out B, ok bool) {
	if l.state != layerDouble {
		return out, false
	}
	b1, b2, merger := l.b1, l.b2, l.merger
	merger.Work(b1, b2, l.frontier, fuel)
	if *fuel <= 0 {
		return out, false
	}
	out = merger.Done()
	var zeroB B
	l.b1, l.b2 = zeroB, zeroB
	l.merger = nil
	l.frontier = nil
	l.state = layerVacant
	return out, true
}

// complete forces the layer to a single batch using unbounded fuel. It
// returns ok=false only for a Vacant layer.
func (l *layer[B, K, V, T, R]) complete() (out B, ok bool) {
	switch l.state {
	case layerVacant:
		return out, false
	case layerSingle:
		out = l.b1
		var zero B
		l.b1 = zero
		l.state = layerVacant
		return out, true
	case layerDouble:
		fuel := Fuel(math.MaxInt)
		b1, b2, merger := l.b1, l.b2, l.merger
		merger.Work(b1, b2, l.frontier, &fuel)
		if fuel <= 0 {
			panicStuckMerger()
		}
		out = merger.Done()
		var zeroB B
		l.b1, l.b2 = zeroB, zeroB
		l.merger = nil
		l.frontier = nil
		l.state = layerVacant
		return out, true
	}
	panic("spine: unreachable layer state")
}
