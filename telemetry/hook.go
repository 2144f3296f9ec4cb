package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/rickchristie/uniqlist"
)

// Hook subscribes to engine events and persists one AttemptRecord per
// backend call and one RunRecord per run. Register it on the engine's hook
// registry:
//
//	writer, _ := telemetry.NewWriter("uniqlist.jsonl")
//	registry := uniqlist.NewHookRegistry()
//	registry.Register(telemetry.NewHook(writer))
//
// Append errors are swallowed: telemetry must never fail a generation run.
type Hook struct {
	writer *Writer

	mu   sync.Mutex
	runs map[string]runInfo
}

type runInfo struct {
	query  string
	target int
}

// NewHook creates a Hook writing through writer.
func NewHook(writer *Writer) *Hook {
	return &Hook{
		writer: writer,
		runs:   make(map[string]runInfo),
	}
}

// OnBeforeRun implements uniqlist.BeforeRunHook.
func (h *Hook) OnBeforeRun(ctx context.Context, event uniqlist.BeforeRunEvent) {
	h.mu.Lock()
	h.runs[event.RunID] = runInfo{query: event.Query, target: event.TargetCount}
	h.mu.Unlock()
}

// OnAfterAttempt implements uniqlist.AfterAttemptHook.
func (h *Hook) OnAfterAttempt(ctx context.Context, event uniqlist.AfterAttemptEvent) {
	info := h.lookup(event.RunID)
	m := event.Metrics

	record := AttemptRecord{
		Version:           SchemaVersion,
		Kind:              KindAttempt,
		Time:              time.Now().UTC(),
		RunID:             event.RunID,
		Query:             info.query,
		Target:            info.target,
		Pass:              m.Pass,
		Attempt:           m.Attempt,
		Mode:              string(m.Mode),
		Sampling:          m.Sampling,
		Temperature:       m.Temperature,
		Seed:              m.Seed,
		MaxResponseTokens: m.MaxResponseTokens,
		FreshSession:      m.FreshSession,
		Items:             m.Items,
		ElapsedMS:         m.Duration.Milliseconds(),
	}
	if m.Err != nil {
		record.Error = m.Err.Error()
	}
	_ = h.writer.Append(record)
}

// OnAfterRun implements uniqlist.AfterRunHook.
func (h *Hook) OnAfterRun(ctx context.Context, event uniqlist.AfterRunEvent) {
	h.mu.Lock()
	delete(h.runs, event.RunID)
	h.mu.Unlock()

	d := event.Diagnostics
	dupRate := d.DuplicateRate
	rounds := d.BackfillRounds
	breaker := d.CircuitBreakerTriggered

	record := RunRecord{
		Version:        SchemaVersion,
		Kind:           KindRun,
		Time:           time.Now().UTC(),
		RunID:          event.RunID,
		Query:          event.Query,
		Target:         d.TargetCount,
		UniqueCount:    d.UniqueCount,
		ElapsedMS:      event.Duration.Milliseconds(),
		DuplicateRate:  &dupRate,
		BackfillRounds: &rounds,
		CircuitBreaker: &breaker,
		FailureReason:  d.FailureReason,
		TopDuplicates:  d.TopDuplicates,
	}
	_ = h.writer.Append(record)
}

func (h *Hook) lookup(runID string) runInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[runID]
}
