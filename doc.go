// Package spine implements a log-structured, fueled, append-only trace for
// incremental dataflow.
//
// A trace is an ordered history of update tuples (K, V, T, R) produced by
// some upstream operator. Downstream operators consume cursors over the
// trace to reconstruct collections at chosen frontiers. [Spine] maintains
// that history so that new immutable batches can be appended cheaply, the
// total storage cost stays within a constant factor of the live update
// count, and cursor construction over arbitrary prefixes is fast, all while
// amortising merge cost against insertion volume so no single operation
// stalls the owning dataflow operator.
//
// # Architecture
//
// The hard engineering lives in the spine itself: a level-indexed collection
// of immutable batches ([Batch]) with progressive, fueled pairwise merging
// ([Merger]), and the invariants that keep it both compact and incrementally
// progress-able. [Spine.Insert] appends a batch; [Spine.Exert] applies fuel
// to merges already in progress without introducing new data;
// [Spine.CursorThrough] builds a multiway cursor over every batch whose
// range lies at or below a caller-supplied frontier.
//
// The spine is deliberately agnostic to the batch implementation, the
// builder that produces empty sentinel batches, and the scheduling
// substrate that calls [Spine.Exert], [Spine.Insert] and
// [Spine.CursorThrough] and honours [Activator] re-scheduling. Those are
// external collaborators, supplied by the caller.
//
// # Concurrency
//
// Single-threaded cooperative. A *Spine[B, K, V, T, R] is owned by exactly
// one dataflow operator; every exported method executes to completion
// within a single scheduler turn, with no internal locking. [Activator], if
// supplied, is a one-shot re-scheduling hint, not a timer and not a thread.
//
// # Errors
//
// Every error condition the spine can detect is a programmer-contract
// violation: a caller that violates a documented precondition gets a panic,
// not a recoverable error. See the individual method docs for the
// conditions that panic.
package spine
