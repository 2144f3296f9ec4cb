package uniqlist

import "time"

// -----------------------------------------------------------------------------
// Hook Events
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// BeforeRunEvent is emitted once when a generation run starts.
type BeforeRunEvent struct {
	// RunID uniquely identifies this run across telemetry records.
	RunID string

	// Query is the natural-language request.
	Query string

	// TargetCount is the N being converged toward.
	TargetCount int

	// Seed is the caller-supplied seed, nil when unseeded.
	Seed *uint64
}

func (BeforeRunEvent) hookEvent() {}

// AfterRunEvent is emitted once when a generation run finishes, successfully
// or not.
type AfterRunEvent struct {
	RunID string
	Query string

	// Items is the final ordered item list.
	Items []string

	// Diagnostics is the run summary.
	Diagnostics Diagnostics

	// Duration is the total run time.
	Duration time.Duration
}

func (AfterRunEvent) hookEvent() {}

// BeforeAttemptEvent is emitted before each backend call.
type BeforeAttemptEvent struct {
	RunID string

	// Pass is the generation pass (1-indexed).
	Pass int

	// Attempt is the retry index within the request (1-indexed).
	Attempt int

	// Request is the request about to be issued.
	Request *GenerateRequest
}

func (BeforeAttemptEvent) hookEvent() {}

// AfterAttemptEvent is emitted after each backend call completes.
type AfterAttemptEvent struct {
	RunID string

	// Metrics is the full per-attempt record, including the error if the
	// attempt failed.
	Metrics AttemptMetrics
}

func (AfterAttemptEvent) hookEvent() {}

// AfterRoundEvent is emitted after each backfill round, before the circuit
// breaker evaluates it.
type AfterRoundEvent struct {
	RunID string

	// Round is the backfill round number (1-indexed).
	Round int

	// Mode is the mode the round ran in.
	Mode GenerationMode

	// UniqueBefore and UniqueAfter are the unique counts around the round.
	UniqueBefore int
	UniqueAfter  int

	// DuplicateRate is the round's own dupDelta / generatedDelta, 0 when
	// the round generated nothing.
	DuplicateRate float64

	// Boosted is true when the round used a boosted token budget.
	Boosted bool
}

func (AfterRoundEvent) hookEvent() {}
