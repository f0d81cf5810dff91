// Package testtrace is a minimal, non-production implementation of the
// spine's batch/merger/builder collaborators, for use by spine's own tests
// and by callers exercising a Spine in their own tests.
package testtrace

import (
	"sort"

	"github.com/flowspine/spine"
)

// Tuple is an update (key, value, time, diff) as consumed by [Batch].
type Tuple struct {
	K int
	V int
	T uint64
	R int64
}

// LessEqual is the total order over uint64 timestamps used throughout this
// package.
var LessEqual = spine.TotalOrder[uint64]()

// KeyLess orders tuples by key for [spine.CursorList] construction.
func KeyLess(a, b int) bool { return a < b }

// Batch is an immutable, sorted, in-memory chunk of updates.
type Batch struct {
	lower, upper []uint64
	tuples       []Tuple
}

// NewBatch constructs a Batch, sorting tuples by (K, V, T). lower and upper
// must describe the batch's frontier; the caller is responsible for
// contiguity.
func NewBatch(lower, upper []uint64, tuples []Tuple) Batch {
	sorted := make([]Tuple, len(tuples))
	copy(sorted, tuples)
	sort.Slice(sorted, func(i, j int) bool { return tupleLess(sorted[i], sorted[j]) })
	return Batch{lower: cloneUint64(lower), upper: cloneUint64(upper), tuples: sorted}
}

func tupleLess(a, b Tuple) bool {
	if a.K != b.K {
		return a.K < b.K
	}
	if a.V != b.V {
		return a.V < b.V
	}
	return a.T < b.T
}

func cloneUint64(s []uint64) []uint64 {
	if s == nil {
		return nil
	}
	out := make([]uint64, len(s))
	copy(out, s)
	return out
}

func (b Batch) Lower() []uint64 { return b.lower }
func (b Batch) Upper() []uint64 { return b.upper }
func (b Batch) Len() int        { return len(b.tuples) }
func (b Batch) IsEmpty() bool   { return len(b.tuples) == 0 }

func (b Batch) Cursor() spine.Cursor[int, int, uint64, int64] {
	return &cursor{tuples: b.tuples}
}

// Clone is a value copy; Batch's only mutable-looking field, tuples, is
// never mutated in place after construction.
func (b Batch) Clone() Batch { return b }

func (b Batch) BeginMerge(other Batch) spine.Merger[Batch, uint64] {
	if !equalUint64(b.upper, other.lower) {
		panic("testtrace: BeginMerge: batches are not contiguous")
	}
	combined := make([]Tuple, 0, len(b.tuples)+len(other.tuples))
	combined = append(combined, b.tuples...)
	combined = append(combined, other.tuples...)
	sort.Slice(combined, func(i, j int) bool { return tupleLess(combined[i], combined[j]) })
	return &merger{combined: combined, lower: b.lower, upper: other.upper}
}

func equalUint64(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type cursor struct {
	tuples []Tuple
	pos    int
}

func (c *cursor) Valid() bool  { return c.pos < len(c.tuples) }
func (c *cursor) Key() int     { return c.tuples[c.pos].K }
func (c *cursor) Val() int     { return c.tuples[c.pos].V }
func (c *cursor) Time() uint64 { return c.tuples[c.pos].T }
func (c *cursor) Diff() int64  { return c.tuples[c.pos].R }
func (c *cursor) Next()        { c.pos++ }

// merger progressively copies a pre-sorted combined tuple list, consolidating
// equal (key, value, time) tuples and advancing times to the compaction
// frontier only once every input tuple has been visited.
type merger struct {
	combined     []Tuple
	pos          int
	out          []Tuple
	lower, upper []uint64
	done         bool
}

func (m *merger) Work(b1, b2 Batch, compactionFrontier []uint64, fuel *spine.Fuel) {
	budget := int(*fuel)
	consumed := 0
	for m.pos < len(m.combined) && consumed < budget {
		m.out = append(m.out, m.combined[m.pos])
		m.pos++
		consumed++
	}
	*fuel -= spine.Fuel(consumed)
	if m.pos >= len(m.combined) && !m.done {
		m.consolidate(compactionFrontier)
		m.done = true
	}
}

func (m *merger) consolidate(frontier []uint64) {
	if len(frontier) > 0 {
		meet := frontier[0]
		for _, f := range frontier[1:] {
			if f < meet {
				meet = f
			}
		}
		for i := range m.out {
			if m.out[i].T < meet {
				m.out[i].T = meet
			}
		}
	}

	sort.Slice(m.out, func(i, j int) bool { return tupleLess(m.out[i], m.out[j]) })

	merged := m.out[:0]
	for _, t := range m.out {
		if n := len(merged); n > 0 && merged[n-1].K == t.K && merged[n-1].V == t.V && merged[n-1].T == t.T {
			merged[n-1].R += t.R
			if merged[n-1].R == 0 {
				merged = merged[:n-1]
			}
			continue
		}
		merged = append(merged, t)
	}
	m.out = merged
}

func (m *merger) Done() Batch {
	return Batch{lower: m.lower, upper: m.upper, tuples: m.out}
}

// Builder produces empty sentinel batches for [spine.Spine.Close].
type Builder struct{}

func (Builder) Done(lower, upper []uint64) Batch {
	return NewBatch(lower, upper, nil)
}
