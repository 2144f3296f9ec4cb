// Package uniqlist implements a multi-pass unique-list generation engine.
//
// Given a natural-language query and a target count N, the engine orchestrates
// repeated calls to a text-generation backend until it has collected N
// semantically distinct items. Duplicates are detected with a deterministic
// canonicalization function ([Normalizer]), token budgets are computed with
// pure arithmetic ([PassOneCount], [BackfillCount]), and convergence is
// bounded by a pass ceiling and a no-progress circuit breaker.
//
// # Basic Usage
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	backend := models.NewLCGBackend(llm).WithModelName("gpt-4o-mini")
//
//	engine := uniqlist.New(backend, backfill.Hybrid(), uniqlist.DefaultConfig())
//	items, diags, err := engine.Generate(ctx, "programming languages", 10, nil)
//
// Generate never fails for under-delivery: it always returns the best-effort
// item list, and diags explains why N was not reached (circuit breaker, pass
// exhaustion, or repeated backend failure). The returned error is non-nil only
// for fatal conditions: context-window overflow and context cancellation.
//
// # Architecture
//
//   - [TextGenerator] is the backend contract; models/ adapts LangChainGo.
//   - [Client] wraps the backend with retry, seed rotation, session refresh,
//     and adaptive token boosting.
//   - [GenerationState] accumulates unique items; [GenerationState.Absorb] is
//     the only mutation path into the ordered list.
//   - [BackfillStrategy] implementations (backfill/) top the list up toward N
//     after the initial over-generation pass.
//   - Hooks ([HookRegistry]) observe attempts, rounds, and runs; telemetry/
//     and loggers/ attach through them.
//
// A single run is strictly sequential: every round's prompt depends on the
// accumulated avoid-list from all prior rounds. Independent runs may execute
// concurrently, each with its own state and session.
package uniqlist
