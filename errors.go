package spine

import "fmt"

func panicContiguity(got, want any) {
	panic(fmt.Sprintf("spine: insert: batch.lower %v does not match spine.upper %v", got, want))
}

func panicEmptyBatch() {
	panic("spine: insert: batch.lower equals batch.upper")
}

func panicClosedTrace() {
	panic("spine: cursor_through: advance_frontier is empty, trace is closed")
}

func panicBelowThroughFrontier() {
	panic("spine: cursor_through: upper is not dominated by through_frontier")
}

func panicStraddlingCursor() {
	panic("spine: cursor_through: requested frontier straddles a pending batch")
}

func panicDoubleInsert() {
	panic("spine: insert_at: layer already holds two batches")
}

func panicStuckMerger() {
	panic("spine: complete: merger reported it was not done despite unbounded fuel")
}
