package spine

// OperatorInfo identifies the dataflow operator that owns a [Spine], purely
// for the benefit of a [Logger]. It carries no semantics for the spine
// itself.
type OperatorInfo struct {
	// ID is an operator-local identifier, typically assigned by the
	// scheduling substrate.
	ID int
	// Name is a human-readable label, used only for diagnostics.
	Name string
}

// Cursor is an opaque view over a single batch's update tuples, as produced
// by [Batch.Cursor]. The spine never interprets a Cursor directly; it is
// returned to the caller bundled inside a [CursorList].
type Cursor[K, V, T, R any] interface {
	// Valid reports whether the cursor is currently positioned on a tuple.
	Valid() bool
	// Key returns the key at the current position. Only valid when Valid
	// returns true.
	Key() K
	// Val returns the value at the current position. Only valid when Valid
	// returns true.
	Val() V
	// Time returns the timestamp at the current position. Only valid when
	// Valid returns true.
	Time() T
	// Diff returns the difference at the current position. Only valid when
	// Valid returns true.
	Diff() R
	// Next advances the cursor by one tuple.
	Next()
}

// Batch is an immutable, sorted collection of update tuples with lower and
// upper frontier annotations. B is the concrete batch type itself, supplied
// as a self-referential type parameter so that [Merger] and [Spine] can be
// expressed without virtual dispatch.
//
// Implementations must satisfy: for a non-empty batch, Lower() and Upper()
// are unequal antichains; for the empty sentinel batch produced by a
// [Builder], they are equal.
type Batch[B any, K, V, T, R any] interface {
	// Lower returns the frontier before which this batch contains no
	// updates.
	Lower() []T
	// Upper returns the frontier at or after which this batch contains no
	// updates.
	Upper() []T
	// Len returns the physical number of update tuples in the batch.
	Len() int
	// IsEmpty reports whether the batch carries zero update tuples. It must
	// hold that IsEmpty() == (Len() == 0).
	IsEmpty() bool
	// Cursor returns a fresh cursor over the batch's own storage.
	Cursor() Cursor[K, V, T, R]
	// Clone returns a cheap (e.g. reference-counted) copy of the batch,
	// suitable for retention inside a [CursorList]'s storage after the
	// original has moved on (e.g. into a merge).
	Clone() B
	// BeginMerge starts a progressive merge of this batch with other.
	// Precondition: this.Upper() equals other.Lower().
	BeginMerge(other B) Merger[B, T]
}

// Fuel is an abstract unit of merge work; one unit is approximately one
// update tuple processed by a [Merger].
type Fuel = int

// Merger progressively combines two sibling batches, produced by adjacent
// layers of a [Spine], into a single replacement batch one layer up.
type Merger[B, T any] interface {
	// Work advances the merge by up to *fuel units, decrementing *fuel by
	// the amount of work actually performed. compactionFrontier, when
	// non-nil, is the advance frontier captured when the merge began; the
	// merger may use it to advance timestamps of updates at or before it.
	// Leaving *fuel greater than zero after a call signals completion.
	Work(b1, b2 B, compactionFrontier []T, fuel *Fuel)
	// Done returns the finished batch. Precondition: a prior call to Work
	// left fuel greater than zero.
	Done() B
}

// Builder produces the empty sentinel batch used by [Spine.Close] to mark
// the logical end of a trace. The spine never asks a Builder to include any
// update tuples.
type Builder[B, T any] interface {
	// Done returns an empty batch with the given lower and upper frontier,
	// which must be equal.
	Done(lower, upper []T) B
}

// Activator is an idempotent, opaque re-scheduling hint. It is not a timer
// and not a thread: invoking Activate asks the owning runtime to call the
// dataflow operator again soon, so that further fuel can be applied.
// Invoking it multiple times before the next scheduler turn must be
// harmless.
type Activator interface {
	Activate()
}
