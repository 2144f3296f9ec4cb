package uniqlist

import "context"

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe a run at well-defined points. A hook implements any subset of
// the interfaces below and is registered once:
//
//	registry := uniqlist.NewHookRegistry()
//	registry.Register(telemetry.NewHook(writer))
//	registry.Register(loggers.NewZapHook(logger))
//
//	engine := uniqlist.New(backend, strategy, cfg).WithHooks(registry)
//
// Hooks are called in registration order and must not mutate engine state.
// For paired hooks (Before/After), the After hook is always called if the
// Before hook was called, even when the call failed.

// BeforeRunHook is notified once when a run starts.
type BeforeRunHook interface {
	OnBeforeRun(ctx context.Context, event BeforeRunEvent)
}

// AfterRunHook is notified once when a run finishes. Always called if
// OnBeforeRun was called, even when the run ends early.
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, event AfterRunEvent)
}

// BeforeAttemptHook is notified before each backend call.
type BeforeAttemptHook interface {
	OnBeforeAttempt(ctx context.Context, event BeforeAttemptEvent)
}

// AfterAttemptHook is notified after each backend call, failed ones included.
type AfterAttemptHook interface {
	OnAfterAttempt(ctx context.Context, event AfterAttemptEvent)
}

// AfterRoundHook is notified after each backfill round.
type AfterRoundHook interface {
	OnAfterRound(ctx context.Context, event AfterRoundEvent)
}

// -----------------------------------------------------------------------------
// Hook Registry
// -----------------------------------------------------------------------------

// HookRegistry holds registered hooks and dispatches events to those that
// implement the matching interface. The registry is assembled before the
// engine runs and is read-only afterwards.
type HookRegistry struct {
	beforeRun     []BeforeRunHook
	afterRun      []AfterRunHook
	beforeAttempt []BeforeAttemptHook
	afterAttempt  []AfterAttemptHook
	afterRound    []AfterRoundHook
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// Register adds a hook. The hook is inspected for each hook interface it
// implements; implementing none is a silent no-op.
func (r *HookRegistry) Register(hook any) *HookRegistry {
	if h, ok := hook.(BeforeRunHook); ok {
		r.beforeRun = append(r.beforeRun, h)
	}
	if h, ok := hook.(AfterRunHook); ok {
		r.afterRun = append(r.afterRun, h)
	}
	if h, ok := hook.(BeforeAttemptHook); ok {
		r.beforeAttempt = append(r.beforeAttempt, h)
	}
	if h, ok := hook.(AfterAttemptHook); ok {
		r.afterAttempt = append(r.afterAttempt, h)
	}
	if h, ok := hook.(AfterRoundHook); ok {
		r.afterRound = append(r.afterRound, h)
	}
	return r
}

// FireBeforeRun dispatches a BeforeRunEvent. Nil-safe.
func (r *HookRegistry) FireBeforeRun(ctx context.Context, event BeforeRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.beforeRun {
		h.OnBeforeRun(ctx, event)
	}
}

// FireAfterRun dispatches an AfterRunEvent. Nil-safe.
func (r *HookRegistry) FireAfterRun(ctx context.Context, event AfterRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.afterRun {
		h.OnAfterRun(ctx, event)
	}
}

// FireBeforeAttempt dispatches a BeforeAttemptEvent. Nil-safe.
func (r *HookRegistry) FireBeforeAttempt(ctx context.Context, event BeforeAttemptEvent) {
	if r == nil {
		return
	}
	for _, h := range r.beforeAttempt {
		h.OnBeforeAttempt(ctx, event)
	}
}

// FireAfterAttempt dispatches an AfterAttemptEvent. Nil-safe.
func (r *HookRegistry) FireAfterAttempt(ctx context.Context, event AfterAttemptEvent) {
	if r == nil {
		return
	}
	for _, h := range r.afterAttempt {
		h.OnAfterAttempt(ctx, event)
	}
}

// FireAfterRound dispatches an AfterRoundEvent. Nil-safe.
func (r *HookRegistry) FireAfterRound(ctx context.Context, event AfterRoundEvent) {
	if r == nil {
		return
	}
	for _, h := range r.afterRound {
		h.OnAfterRound(ctx, event)
	}
}
