package backfill

import (
	"context"

	"github.com/rickchristie/uniqlist"
)

// UnguidedStrategy runs every backfill round in unguided (freeform) mode,
// relying on the engine's tolerant parser to salvage items.
type UnguidedStrategy struct{}

// Unguided returns a factory for UnguidedStrategy.
func Unguided() uniqlist.StrategyFactory {
	return func(uniqlist.Config) uniqlist.BackfillStrategy {
		return &UnguidedStrategy{}
	}
}

// Name implements uniqlist.BackfillStrategy.
func (s *UnguidedStrategy) Name() string { return "unguided" }

// Round implements uniqlist.BackfillStrategy.
func (s *UnguidedStrategy) Round(
	ctx context.Context,
	rc *uniqlist.RoundContext,
) (*uniqlist.RoundReport, error) {
	return rc.UnguidedRound(ctx, false)
}

// Exhausted implements uniqlist.BackfillStrategy.
func (s *UnguidedStrategy) Exhausted() bool { return false }

// Compile-time check.
var _ uniqlist.BackfillStrategy = (*UnguidedStrategy)(nil)
