package backfill

import (
	"context"

	"github.com/rickchristie/uniqlist"
)

// hybridStallRounds is how many consecutive zero-progress guided rounds the
// hybrid tolerates before probing. Like the circuit breaker constant it is
// an empirically tuned heuristic, not a derived value.
const hybridStallRounds = 2

// HybridStrategy starts in guided mode and watches each round's duplicate
// rate. When a guided round crosses the configured duplicate-rate threshold,
// or guided rounds stall repeatedly, the strategy first spends one
// budget-boosted guided probe inside the same round. Only if that probe also
// fails to break the stall does it switch to unguided mode - permanently:
// once switched it never goes back, and it allows at most
// Config.UnguidedRoundCap unguided rounds regardless of progress.
type HybridStrategy struct {
	dupRateThreshold float64
	unguidedCap      int

	switched       bool
	stalls         int
	unguidedRounds int
}

// Hybrid returns a factory for HybridStrategy.
func Hybrid() uniqlist.StrategyFactory {
	return func(cfg uniqlist.Config) uniqlist.BackfillStrategy {
		return &HybridStrategy{
			dupRateThreshold: cfg.DupRateThreshold,
			unguidedCap:      cfg.UnguidedRoundCap,
		}
	}
}

// Name implements uniqlist.BackfillStrategy.
func (s *HybridStrategy) Name() string { return "hybrid" }

// Switched reports whether the strategy has permanently moved to unguided
// mode.
func (s *HybridStrategy) Switched() bool { return s.switched }

// Round implements uniqlist.BackfillStrategy.
func (s *HybridStrategy) Round(
	ctx context.Context,
	rc *uniqlist.RoundContext,
) (*uniqlist.RoundReport, error) {
	if s.switched {
		s.unguidedRounds++
		return rc.UnguidedRound(ctx, false)
	}

	boosted := rc.Round() == 1 && rc.Config().FirstRoundBoost
	report, err := rc.GuidedRound(ctx, boosted)
	if err != nil {
		return report, err
	}

	if report.Added == 0 {
		s.stalls++
	} else {
		s.stalls = 0
	}

	if report.DuplicateRate() < s.dupRateThreshold && s.stalls < hybridStallRounds {
		return report, nil
	}

	// Guided mode looks exhausted. One boosted probe before giving up on it.
	probe, err := rc.GuidedRound(ctx, true)
	if probe != nil {
		report.Added += probe.Added
		report.Generated += probe.Generated
		report.Duplicates += probe.Duplicates
		report.Boosted = true
		report.Escalated = report.Escalated || probe.Escalated
	}
	if err != nil {
		return report, err
	}

	if probe.Added == 0 {
		s.switched = true
	} else {
		s.stalls = 0
	}
	return report, nil
}

// Exhausted implements uniqlist.BackfillStrategy: true once the unguided
// round cap is spent.
func (s *HybridStrategy) Exhausted() bool {
	return s.switched && s.unguidedRounds >= s.unguidedCap
}

// Compile-time check.
var _ uniqlist.BackfillStrategy = (*HybridStrategy)(nil)
