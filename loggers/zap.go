package loggers

import (
	"context"

	"go.uber.org/zap"

	"github.com/rickchristie/uniqlist"
)

// ZapHook logs run progress through a zap structured logger. Attempts log at
// debug, rounds at info, and run completion at info (warn when the target
// was missed). Suitable for production services embedding the engine.
type ZapHook struct {
	log *zap.Logger
}

// NewZapHook creates a ZapHook over logger.
func NewZapHook(logger *zap.Logger) *ZapHook {
	return &ZapHook{log: logger}
}

// OnBeforeRun implements uniqlist.BeforeRunHook.
func (h *ZapHook) OnBeforeRun(ctx context.Context, event uniqlist.BeforeRunEvent) {
	h.log.Info("generation run started",
		zap.String("run_id", event.RunID),
		zap.String("query", event.Query),
		zap.Int("target", event.TargetCount),
	)
}

// OnAfterAttempt implements uniqlist.AfterAttemptHook.
func (h *ZapHook) OnAfterAttempt(ctx context.Context, event uniqlist.AfterAttemptEvent) {
	m := event.Metrics
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.Int("pass", m.Pass),
		zap.Int("attempt", m.Attempt),
		zap.String("mode", string(m.Mode)),
		zap.String("sampling", m.Sampling),
		zap.Float64("temperature", m.Temperature),
		zap.Int("max_tokens", m.MaxResponseTokens),
		zap.Duration("elapsed", m.Duration),
	}
	if m.Err != nil {
		h.log.Warn("attempt failed", append(fields, zap.Error(m.Err))...)
		return
	}
	h.log.Debug("attempt completed", append(fields, zap.Int("items", len(m.Items)))...)
}

// OnAfterRound implements uniqlist.AfterRoundHook.
func (h *ZapHook) OnAfterRound(ctx context.Context, event uniqlist.AfterRoundEvent) {
	h.log.Info("backfill round completed",
		zap.String("run_id", event.RunID),
		zap.Int("round", event.Round),
		zap.String("mode", string(event.Mode)),
		zap.Int("unique_before", event.UniqueBefore),
		zap.Int("unique_after", event.UniqueAfter),
		zap.Float64("dup_rate", event.DuplicateRate),
		zap.Bool("boosted", event.Boosted),
	)
}

// OnAfterRun implements uniqlist.AfterRunHook.
func (h *ZapHook) OnAfterRun(ctx context.Context, event uniqlist.AfterRunEvent) {
	d := event.Diagnostics
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.Int("unique", d.UniqueCount),
		zap.Int("target", d.TargetCount),
		zap.Float64("dup_rate", d.DuplicateRate),
		zap.Int("rounds", d.BackfillRounds),
		zap.Bool("breaker", d.CircuitBreakerTriggered),
		zap.Duration("duration", event.Duration),
	}
	if !d.Success {
		h.log.Warn("generation run under-delivered",
			append(fields, zap.String("reason", d.FailureReason))...)
		return
	}
	h.log.Info("generation run completed", fields...)
}
