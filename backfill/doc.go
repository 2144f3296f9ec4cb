// Package backfill provides the standard backfill strategies for the
// uniqlist engine.
//
// After pass-1, the engine hands each round to a [uniqlist.BackfillStrategy]:
//
//   - [Guided] requests schema-constrained output every round. Cheapest per
//     item, but prone to repeating itself on narrow topics.
//   - [Unguided] requests freeform text and relies on tolerant parsing.
//     Costs more tokens per item but escapes schema-induced ruts.
//   - [Hybrid] starts guided and switches permanently to unguided once the
//     guided rounds stop paying for themselves (high duplicate rate or
//     repeated stalls), after one budget-boosted guided probe.
//
// Strategies are created per run through a [uniqlist.StrategyFactory]:
//
//	engine := uniqlist.New(backend, backfill.Hybrid(), cfg)
package backfill
