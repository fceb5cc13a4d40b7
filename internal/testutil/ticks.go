package testutil

import "sync/atomic"

// TickRecorder counts keep-awake signals. Tick is safe to call from the
// power goroutine while the test reads Count.
type TickRecorder struct {
	n atomic.Int64
}

// NewTickRecorder creates a recorder at zero.
func NewTickRecorder() *TickRecorder {
	return &TickRecorder{}
}

// Tick records one signal.
func (r *TickRecorder) Tick() {
	r.n.Add(1)
}

// Count returns the number of signals so far.
func (r *TickRecorder) Count() int64 {
	return r.n.Load()
}

// Reset sets the count back to zero.
func (r *TickRecorder) Reset() {
	r.n.Store(0)
}
