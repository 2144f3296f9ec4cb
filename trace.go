package uniqlist

import "time"

// AttemptMetrics records one backend call. One record is appended to the
// run's local telemetry per attempt, successful or not.
type AttemptMetrics struct {
	// Pass is the generation pass this attempt belonged to (1-indexed;
	// pass-1 is the initial over-generation).
	Pass int

	// Attempt is the retry index within the request (1-indexed).
	Attempt int

	// Mode is guided or unguided.
	Mode GenerationMode

	// Sampling describes the decoder profile, e.g. "top-p(0.95)".
	Sampling string

	// Temperature is the sampling temperature used.
	Temperature float64

	// Seed is the seed used, nil when unseeded.
	Seed *uint64

	// MaxResponseTokens is the response cap requested.
	MaxResponseTokens int

	// FreshSession is true when the retry policy recreated the backend
	// session before this attempt.
	FreshSession bool

	// Items holds the items returned. Nil on failure; an empty non-nil
	// slice is a valid-but-empty response.
	Items []string

	// Duration is the attempt's wall-clock time.
	Duration time.Duration

	// Err holds the attempt error, if any.
	Err error
}

// Diagnostics is the run summary returned alongside the item list. The
// engine never fails for under-delivery; when UniqueCount < TargetCount,
// FailureReason explains why.
type Diagnostics struct {
	// Success is true when the run reached its target count.
	Success bool

	// UniqueCount is the final number of unique items.
	UniqueCount int

	// TargetCount is the N that was requested.
	TargetCount int

	// DuplicateRate is duplicates over total generated for the whole run.
	DuplicateRate float64

	// BackfillRounds is the number of backfill rounds that ran.
	BackfillRounds int

	// CircuitBreakerTriggered is true when the stall breaker ended the run.
	CircuitBreakerTriggered bool

	// FailureReason is the first captured failure reason, empty on success.
	FailureReason string

	// TopDuplicates lists the most-repeated duplicate keys with their
	// collision counts, worst first.
	TopDuplicates []Offender
}
