// Package telemetry persists per-attempt and per-run records as
// line-delimited JSON, with size-bounded log rotation. It attaches to the
// engine through the hook interfaces; see [Hook].
package telemetry

import (
	"time"

	"github.com/rickchristie/uniqlist"
)

// SchemaVersion is written into every record so readers can handle old logs.
// Version 1 lacked the diagnostic fields on RunRecord; they are optional for
// that reason and stay optional.
const SchemaVersion = 2

// Record kinds.
const (
	KindAttempt = "attempt"
	KindRun     = "run"
)

// AttemptRecord is one backend call.
type AttemptRecord struct {
	Version int       `json:"v"`
	Kind    string    `json:"kind"`
	Time    time.Time `json:"time"`

	RunID  string `json:"run_id"`
	Query  string `json:"query"`
	Target int    `json:"target"`

	Pass              int     `json:"pass"`
	Attempt           int     `json:"attempt"`
	Mode              string  `json:"mode"`
	Sampling          string  `json:"sampling"`
	Temperature       float64 `json:"temperature"`
	Seed              *uint64 `json:"seed,omitempty"`
	MaxResponseTokens int     `json:"max_response_tokens"`
	FreshSession      bool    `json:"fresh_session,omitempty"`

	// Items is nil when the attempt failed; an empty non-nil slice is a
	// valid-but-empty response.
	Items []string `json:"items"`

	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// RunRecord is one full generation run. The diagnostic fields below the
// unique count are optional: absent in version-1 logs, populated since
// version 2.
type RunRecord struct {
	Version int       `json:"v"`
	Kind    string    `json:"kind"`
	Time    time.Time `json:"time"`

	RunID  string `json:"run_id"`
	Query  string `json:"query"`
	Target int    `json:"target"`

	UniqueCount int   `json:"unique_count"`
	ElapsedMS   int64 `json:"elapsed_ms"`

	DuplicateRate  *float64            `json:"duplicate_rate,omitempty"`
	BackfillRounds *int                `json:"backfill_rounds,omitempty"`
	CircuitBreaker *bool               `json:"circuit_breaker,omitempty"`
	FailureReason  string              `json:"failure_reason,omitempty"`
	TopDuplicates  []uniqlist.Offender `json:"top_duplicates,omitempty"`
}
