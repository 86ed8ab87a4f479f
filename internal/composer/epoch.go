package composer

import "sync/atomic"

// Epoch numbers navigation requests. Work started under an older number is
// stale once a newer one has begun and must not be shown.
type Epoch struct {
	n atomic.Uint64
}

// Next starts a new request and returns its number.
func (e *Epoch) Next() uint64 {
	return e.n.Add(1)
}

// Valid reports whether n is still the latest request.
func (e *Epoch) Valid(n uint64) bool {
	return e.n.Load() == n
}
