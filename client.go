package uniqlist

import (
	"context"
	"errors"
	"time"
)

// retryTemperatureDecay is applied to the sampling temperature after two
// failed attempts on the same request.
const retryTemperatureDecay = 0.7

// Client wraps a [TextGenerator] with the engine's per-request retry policy:
// wall-clock timeouts, adaptive token boosting, session hygiene, and
// deterministic seed rotation.
//
// The escalation ladder on a retryable failure is, in order:
//
//  1. Boost MaxResponseTokens by the budget boost factor (capped), keeping
//     the same seed. Truncation is the most common cause of decode failures,
//     so more room is the cheapest first move.
//  2. Recreate the backend session.
//  3. Rotate to the next seed in the configured ring; from the third attempt
//     on, the sampling temperature is also lowered.
//
// [ErrContextOverflow] is always fatal and propagated immediately. When all
// attempts are exhausted the last observed error is returned.
type Client struct {
	backend TextGenerator
	cfg     Config
	hooks   *HookRegistry
}

// NewClient creates a retrying client around backend.
func NewClient(backend TextGenerator, cfg Config, hooks *HookRegistry) *Client {
	return &Client{backend: backend, cfg: cfg, hooks: hooks}
}

// Do issues the request with retries. Every attempt, failed or not, is
// recorded into state's local telemetry and dispatched to the attempt hooks.
// The request is copied before mutation; the caller's req is not modified.
func (c *Client) Do(
	ctx context.Context,
	runID string,
	pass int,
	state *GenerationState,
	req *GenerateRequest,
) (*GenerateResponse, error) {
	attempt := *req

	ringCursor := 0
	freshSession := false
	boosted := false
	var lastErr error

	for i := 1; i <= c.cfg.MaxAttempts; i++ {
		c.hooks.FireBeforeAttempt(ctx, BeforeAttemptEvent{
			RunID:   runID,
			Pass:    pass,
			Attempt: i,
			Request: &attempt,
		})

		resp, err := c.callWithTimeout(ctx, &attempt)

		metrics := AttemptMetrics{
			Pass:              pass,
			Attempt:           i,
			Mode:              attempt.Mode,
			Sampling:          attempt.Sampling.Describe(),
			Temperature:       attempt.Temperature,
			Seed:              attempt.Seed,
			MaxResponseTokens: attempt.MaxResponseTokens,
			FreshSession:      freshSession,
			Err:               err,
		}
		if resp != nil {
			metrics.Items = resp.Items
			metrics.Duration = resp.Duration
		}
		state.RecordAttempt(metrics)
		c.hooks.FireAfterAttempt(ctx, AfterAttemptEvent{RunID: runID, Metrics: metrics})

		if err == nil {
			return resp, nil
		}
		lastErr = err

		if IsFatal(err) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i == c.cfg.MaxAttempts {
			break
		}

		freshSession = false
		switch {
		case !boosted:
			attempt.MaxResponseTokens = BoostTokens(c.cfg.Budget, attempt.MaxResponseTokens)
			boosted = true
		case i == 2:
			if refreshErr := c.backend.RefreshSession(ctx); refreshErr == nil {
				freshSession = true
			}
		default:
			seed := c.cfg.SeedRing[ringCursor%len(c.cfg.SeedRing)]
			ringCursor++
			attempt.Seed = &seed
		}
		if i >= 2 {
			attempt.Temperature *= retryTemperatureDecay
		}
	}

	return nil, lastErr
}

// Once issues the request exactly once, with the wall-clock timeout but no
// retries. Used by the deterministic last-mile completion, which must not
// mutate its request through the escalation ladder.
func (c *Client) Once(
	ctx context.Context,
	runID string,
	pass int,
	state *GenerationState,
	req *GenerateRequest,
) (*GenerateResponse, error) {
	c.hooks.FireBeforeAttempt(ctx, BeforeAttemptEvent{
		RunID:   runID,
		Pass:    pass,
		Attempt: 1,
		Request: req,
	})

	resp, err := c.callWithTimeout(ctx, req)

	metrics := AttemptMetrics{
		Pass:              pass,
		Attempt:           1,
		Mode:              req.Mode,
		Sampling:          req.Sampling.Describe(),
		Temperature:       req.Temperature,
		Seed:              req.Seed,
		MaxResponseTokens: req.MaxResponseTokens,
		Err:               err,
	}
	if resp != nil {
		metrics.Items = resp.Items
		metrics.Duration = resp.Duration
	}
	state.RecordAttempt(metrics)
	c.hooks.FireAfterAttempt(ctx, AfterAttemptEvent{RunID: runID, Metrics: metrics})

	return resp, err
}

// callWithTimeout races the backend call against the configured wall-clock
// budget. A timeout surfaces as context.DeadlineExceeded and feeds the retry
// policy like any other attempt failure.
func (c *Client) callWithTimeout(
	ctx context.Context,
	req *GenerateRequest,
) (*GenerateResponse, error) {
	callCtx := ctx
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout.Std())
		defer cancel()
	}

	start := time.Now()
	resp, err := c.backend.Generate(callCtx, req)
	if err != nil {
		// Distinguish our own timeout from parent cancellation.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	return resp, nil
}
