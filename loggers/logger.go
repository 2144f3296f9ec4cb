// Package loggers provides reusable logging hooks for the engine.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rickchristie/uniqlist"
)

// LoggerHook implements every hook interface and logs everything that
// happens during a run. Structs are logged as YAML for easy reading;
// nothing is truncated. Intended for debugging and interactive harnesses,
// not production.
type LoggerHook struct {
	out io.Writer
}

// NewLoggerHook creates a LoggerHook that writes to stdout.
func NewLoggerHook() *LoggerHook {
	return &LoggerHook{out: os.Stdout}
}

// NewLoggerHookWithWriter creates a LoggerHook that writes to w.
func NewLoggerHookWithWriter(w io.Writer) *LoggerHook {
	return &LoggerHook{out: w}
}

func (h *LoggerHook) logEvent(name string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(h.out, "\n>>> [%s]: %s\n", name, timestamp)
}

func (h *LoggerHook) logYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(h.out, "(failed to marshal: %v)\n", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

// OnBeforeRun implements uniqlist.BeforeRunHook.
func (h *LoggerHook) OnBeforeRun(ctx context.Context, event uniqlist.BeforeRunEvent) {
	h.logEvent("BeforeRun")
	fmt.Fprintf(h.out, "run=%s query=%q target=%d\n", event.RunID, event.Query, event.TargetCount)
}

// OnBeforeAttempt implements uniqlist.BeforeAttemptHook.
func (h *LoggerHook) OnBeforeAttempt(ctx context.Context, event uniqlist.BeforeAttemptEvent) {
	h.logEvent("BeforeAttempt")
	fmt.Fprintf(h.out, "pass=%d attempt=%d mode=%s max_tokens=%d\n",
		event.Pass, event.Attempt, event.Request.Mode, event.Request.MaxResponseTokens)
	fmt.Fprintf(h.out, "prompt:\n%s\n", event.Request.Prompt)
}

// OnAfterAttempt implements uniqlist.AfterAttemptHook.
func (h *LoggerHook) OnAfterAttempt(ctx context.Context, event uniqlist.AfterAttemptEvent) {
	h.logEvent("AfterAttempt")
	h.logYAML(map[string]any{
		"pass":        event.Metrics.Pass,
		"attempt":     event.Metrics.Attempt,
		"sampling":    event.Metrics.Sampling,
		"temperature": event.Metrics.Temperature,
		"items":       event.Metrics.Items,
		"elapsed":     event.Metrics.Duration.String(),
		"error":       errString(event.Metrics.Err),
	})
}

// OnAfterRound implements uniqlist.AfterRoundHook.
func (h *LoggerHook) OnAfterRound(ctx context.Context, event uniqlist.AfterRoundEvent) {
	h.logEvent("AfterRound")
	fmt.Fprintf(h.out, "round=%d mode=%s unique=%d->%d dup_rate=%.2f boosted=%v\n",
		event.Round, event.Mode, event.UniqueBefore, event.UniqueAfter,
		event.DuplicateRate, event.Boosted)
}

// OnAfterRun implements uniqlist.AfterRunHook.
func (h *LoggerHook) OnAfterRun(ctx context.Context, event uniqlist.AfterRunEvent) {
	h.logEvent("AfterRun")
	h.logYAML(map[string]any{
		"run":      event.RunID,
		"items":    event.Items,
		"success":  event.Diagnostics.Success,
		"unique":   event.Diagnostics.UniqueCount,
		"rounds":   event.Diagnostics.BackfillRounds,
		"breaker":  event.Diagnostics.CircuitBreakerTriggered,
		"failure":  event.Diagnostics.FailureReason,
		"duration": event.Duration.String(),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
