package uniqlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BackfillStrategy decides how backfill rounds are issued after pass-1. A
// strategy instance is created per run via [StrategyFactory] and may keep
// per-run state (stall counters, mode switches); it must never be shared
// between concurrent runs.
//
// Implementations live in the backfill package: Guided, Unguided, Hybrid.
type BackfillStrategy interface {
	// Name identifies the strategy in diagnostics and logs.
	Name() string

	// Round runs exactly one backfill round through the RoundContext.
	Round(ctx context.Context, rc *RoundContext) (*RoundReport, error)

	// Exhausted reports whether the strategy refuses to run further rounds
	// regardless of remaining budget (e.g. the hybrid unguided round cap).
	Exhausted() bool
}

// StrategyFactory builds a fresh strategy for one run.
type StrategyFactory func(cfg Config) BackfillStrategy

// Engine is the unique-list generation engine. Construct once with [New];
// each Generate call owns its own state and may run concurrently with other
// calls.
type Engine struct {
	cfg         Config
	client      *Client
	norm        *Normalizer
	prompts     *PromptBuilder
	hooks       *HookRegistry
	newStrategy StrategyFactory
}

// New creates an Engine over backend. newStrategy supplies the backfill
// strategy per run; see the backfill package for the standard ones. Panics
// on invalid config so that misconfiguration fails at construction, not
// mid-run.
func New(backend TextGenerator, newStrategy StrategyFactory, cfg Config) *Engine {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if newStrategy == nil {
		panic("uniqlist: New requires a strategy factory")
	}
	e := &Engine{
		cfg:         cfg,
		norm:        NewNormalizer(cfg.Normalizer),
		prompts:     NewPromptBuilder(cfg.Style),
		newStrategy: newStrategy,
	}
	e.client = NewClient(backend, cfg, nil)
	return e
}

// WithHooks attaches a hook registry. Returns the engine for chaining.
func (e *Engine) WithHooks(hooks *HookRegistry) *Engine {
	e.hooks = hooks
	e.client.hooks = hooks
	return e
}

// Generate produces up to targetCount semantically distinct items for query.
//
// It never fails for under-delivery: the returned slice holds whatever was
// accumulated and the diagnostics explain any shortfall. The error is
// non-nil only for fatal conditions (context-window overflow, cancellation),
// and even then the accumulated items are returned.
func (e *Engine) Generate(
	ctx context.Context,
	query string,
	targetCount int,
	seed *uint64,
) ([]string, Diagnostics, error) {
	state := NewGenerationState(targetCount, e.norm)
	if targetCount <= 0 {
		return nil, state.Diagnostics(), nil
	}

	runID := uuid.NewString()
	start := time.Now()

	e.hooks.FireBeforeRun(ctx, BeforeRunEvent{
		RunID:       runID,
		Query:       query,
		TargetCount: targetCount,
		Seed:        seed,
	})
	defer func() {
		e.hooks.FireAfterRun(ctx, AfterRunEvent{
			RunID:       runID,
			Query:       query,
			Items:       state.Ordered,
			Diagnostics: state.Diagnostics(),
			Duration:    time.Since(start),
		})
	}()

	// Pass-1: a single over-generation request. A non-fatal failure here is
	// not terminal; backfill rounds can still converge.
	if err := e.passOne(ctx, runID, state, query, seed); err != nil {
		state.Fail(fmt.Sprintf("pass-1: %v", err))
		if IsFatal(err) || ctx.Err() != nil {
			return state.Ordered, state.Diagnostics(), err
		}
	}

	strategy := e.newStrategy(e.cfg)
	breaker := NewCircuitBreaker(e.cfg.BreakerThreshold)

	for state.Remaining() > 0 && state.PassCount < e.cfg.MaxPasses {
		if ctx.Err() != nil {
			state.Fail("run canceled")
			return state.Ordered, state.Diagnostics(), ctx.Err()
		}

		before := state.UniqueCount()
		state.PassCount++
		state.BackfillRoundsTotal++

		rc := &RoundContext{
			engine: e,
			runID:  runID,
			query:  query,
			state:  state,
			round:  state.BackfillRoundsTotal,
			seed:   seed,
		}

		report, err := strategy.Round(ctx, rc)
		after := state.UniqueCount()

		mode := ModeGuided
		boosted := false
		dupRate := 0.0
		if report != nil {
			mode = report.Mode
			boosted = report.Boosted
			dupRate = report.DuplicateRate()
		}
		e.hooks.FireAfterRound(ctx, AfterRoundEvent{
			RunID:         runID,
			Round:         rc.round,
			Mode:          mode,
			UniqueBefore:  before,
			UniqueAfter:   after,
			DuplicateRate: dupRate,
			Boosted:       boosted,
		})

		if err != nil {
			state.Fail(fmt.Sprintf("backfill round %d: %v", rc.round, err))
			if IsFatal(err) || ctx.Err() != nil {
				return state.Ordered, state.Diagnostics(), err
			}
		}

		// Greedy last-mile: when only 1-2 items remain, one deterministic
		// request in the mode the strategy is currently using. It fires after
		// every round; the breaker only forbids further rounds, so a tripping
		// round still gets its completion shot.
		if rem := state.Remaining(); rem >= 1 && rem <= 2 {
			e.lastMile(ctx, runID, state, query, mode)
		}

		if breaker.Observe(before, after) {
			state.CircuitBreakerTriggered = true
			if state.Remaining() > 0 {
				state.Fail(fmt.Sprintf("circuit breaker: %d consecutive rounds without progress",
					e.cfg.BreakerThreshold))
			}
			break
		}

		if strategy.Exhausted() {
			state.Fail(fmt.Sprintf("backfill strategy %q exhausted", strategy.Name()))
			break
		}
	}

	if state.Remaining() > 0 && state.PassCount >= e.cfg.MaxPasses {
		state.Fail(fmt.Sprintf("pass limit reached (%d passes)", e.cfg.MaxPasses))
	}

	return state.Ordered, state.Diagnostics(), nil
}

// passOne issues the initial over-generation request: M = overgenerated N,
// high-entropy sampling, placeholder filter, absorb. Exactly one pass, no
// internal looping.
func (e *Engine) passOne(
	ctx context.Context,
	runID string,
	state *GenerationState,
	query string,
	seed *uint64,
) error {
	state.PassCount = 1

	// The prompt length barely depends on the item count, so a draft prompt
	// gives a good enough token estimate to size M.
	draft := e.prompts.PassOne(query, state.TargetCount)
	promptTokens := EstimateTokens(draft)

	m := PassOneCount(e.cfg.Budget, state.TargetCount, promptTokens, ModeGuided)
	prompt := e.prompts.PassOne(query, m)

	req := &GenerateRequest{
		Prompt:            prompt,
		Mode:              ModeGuided,
		Sampling:          e.cfg.Sampling,
		Temperature:       e.cfg.Temperature,
		Seed:              seed,
		MaxResponseTokens: PassOneMaxTokens(e.cfg.Budget, m, ModeGuided),
	}

	resp, err := e.client.Do(ctx, runID, 1, state, req)
	if err != nil {
		return err
	}

	state.Absorb(FilterPlaceholders(resp.Items))
	return nil
}

// lastMile issues a single deterministic completion request for the final
// 1-2 missing items: greedy decoding, zero temperature, unseeded, one
// attempt, in the currently active mode. Failures are recorded but never
// escalate; the next round or the run end handles the shortfall.
func (e *Engine) lastMile(
	ctx context.Context,
	runID string,
	state *GenerationState,
	query string,
	mode GenerationMode,
) {
	need := state.Remaining()
	avoid := state.AvoidWindow(0, len(state.Ordered), 0)
	prompt := e.prompts.LastMile(query, need, avoid)

	req := &GenerateRequest{
		Prompt:            prompt,
		Mode:              mode,
		Sampling:          GreedySampling{},
		Temperature:       0,
		Seed:              nil,
		MaxResponseTokens: ResponseTokensFor(e.cfg.Budget, need, EstimateTokens(prompt), mode),
	}

	resp, err := e.client.Once(ctx, runID, state.PassCount, state, req)
	if err != nil {
		return
	}

	items := resp.Items
	if mode == ModeUnguided {
		if items, err = ExtractItems(resp.Text); err != nil {
			return
		}
	}
	state.Absorb(FilterPlaceholders(items))
}
