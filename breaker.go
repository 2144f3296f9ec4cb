package uniqlist

// CircuitBreaker detects stalled backfill loops. Every round reports its
// unique-count before and after; a round that adds nothing increments the
// no-progress counter, and at threshold consecutive stalls the breaker trips.
// Any round with progress resets the counter. This bounds the worst-case
// number of backend calls per run.
//
// The threshold default of 2 is an empirically tuned heuristic, carried as
// configuration rather than a hardcoded constant.
type CircuitBreaker struct {
	threshold  int
	noProgress int
	tripped    bool
}

// NewCircuitBreaker creates a breaker that trips after threshold consecutive
// no-progress rounds. Panics if threshold < 1.
func NewCircuitBreaker(threshold int) *CircuitBreaker {
	if threshold < 1 {
		panic("uniqlist: CircuitBreaker threshold must be >= 1")
	}
	return &CircuitBreaker{threshold: threshold}
}

// Observe feeds one round's unique-count before/after pair into the breaker
// and returns true if the breaker is now tripped. Once tripped, the caller
// must stop issuing backfill rounds immediately.
func (b *CircuitBreaker) Observe(before, after int) bool {
	if b.tripped {
		return true
	}
	if after > before {
		b.noProgress = 0
		return false
	}
	b.noProgress++
	if b.noProgress >= b.threshold {
		b.tripped = true
	}
	return b.tripped
}

// Tripped reports whether the breaker has tripped.
func (b *CircuitBreaker) Tripped() bool {
	return b.tripped
}
