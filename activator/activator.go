// Package activator provides a minimal, channel-based implementation of
// spine.Activator suitable for driving a single-goroutine scheduler loop
// from re-scheduling hints.
package activator

// Manual is an idempotent re-scheduling hint: Activate is safe to call any
// number of times between drains of Pending, and a single pending signal is
// enough to wake a waiting scheduler exactly once.
//
// Construct with [New]. The zero value has a nil channel: on it Activate does
// nothing, Pending is never readable and Drain always reports false.
type Manual struct {
	signal chan struct{}
}

func New() *Manual {
	return &Manual{signal: make(chan struct{}, 1)}
}

// Activate requests another scheduler turn. Multiple calls before the next
// drain coalesce into a single pending signal.
func (m *Manual) Activate() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Pending returns a channel that is readable once Activate has been called
// since the last successful receive from it.
func (m *Manual) Pending() <-chan struct{} {
	return m.signal
}

// Drain clears any pending signal without blocking, reporting whether one
// was present.
func (m *Manual) Drain() bool {
	select {
	case <-m.signal:
		return true
	default:
		return false
	}
}
