package backfill

import (
	"context"

	"github.com/rickchristie/uniqlist"
)

// GuidedStrategy runs every backfill round in guided (schema-constrained)
// mode. When the config enables FirstRoundBoost, round 1 proactively uses a
// boosted token budget, trading cost for fewer total rounds.
type GuidedStrategy struct{}

// Guided returns a factory for GuidedStrategy.
func Guided() uniqlist.StrategyFactory {
	return func(uniqlist.Config) uniqlist.BackfillStrategy {
		return &GuidedStrategy{}
	}
}

// Name implements uniqlist.BackfillStrategy.
func (s *GuidedStrategy) Name() string { return "guided" }

// Round implements uniqlist.BackfillStrategy.
func (s *GuidedStrategy) Round(
	ctx context.Context,
	rc *uniqlist.RoundContext,
) (*uniqlist.RoundReport, error) {
	boosted := rc.Round() == 1 && rc.Config().FirstRoundBoost
	return rc.GuidedRound(ctx, boosted)
}

// Exhausted implements uniqlist.BackfillStrategy. Guided never self-limits;
// the pass ceiling and the circuit breaker bound it.
func (s *GuidedStrategy) Exhausted() bool { return false }

// Compile-time check.
var _ uniqlist.BackfillStrategy = (*GuidedStrategy)(nil)
