package spine

import "golang.org/x/exp/constraints"

// TotalOrder returns a lessEqual comparator for a timestamp type that
// happens to be a plain totally ordered scalar (e.g. a logical counter)
// rather than a genuine product-order partial order. Most real dataflow
// timestamps are themselves a partial order and need a bespoke comparator;
// this is a convenience for the common scalar case.
func TotalOrder[T constraints.Ordered]() func(a, b T) bool {
	return func(a, b T) bool { return a <= b }
}

// lessEqualFunc is the partial order over timestamps supplied by the caller
// at construction. It must be reflexive, antisymmetric and transitive.
type lessEqualFunc[T any] func(a, b T) bool

// equalAntichains reports whether a and b describe the same antichain, by
// checking mutual domination only; elements are not compared pairwise. Two antichains
// that dominate each other in both directions are, by definition, the same
// set of minimal elements.
func equalAntichains[T any](a, b []T, le lessEqualFunc[T]) bool {
	return dominates(a, b, le) && dominates(b, a, le)
}

// dominates reports whether every element of a is dominated by some element
// of b, i.e. for every t1 in a there exists t2 in b with le(t2, t1). An
// empty a is trivially dominated. A non-empty a is never dominated by an
// empty b.
func dominates[T any](a, b []T, le lessEqualFunc[T]) bool {
	for _, t1 := range a {
		found := false
		for _, t2 := range b {
			if le(t2, t1) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// cloneFrontier returns a copy of f, so that callers can retain a frontier
// beyond the lifetime of the slice it was built from.
func cloneFrontier[T any](f []T) []T {
	if f == nil {
		return nil
	}
	out := make([]T, len(f))
	copy(out, f)
	return out
}
