package backfill_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickchristie/uniqlist"
	"github.com/rickchristie/uniqlist/backfill"
	"github.com/rickchristie/uniqlist/internal/tt"
)

// With FirstRoundBoost set, round 1 proactively requests the boosted token
// budget. Guided and hybrid share the behavior; later rounds are unaffected.
func TestFirstRoundBoost(t *testing.T) {
	factories := map[string]uniqlist.StrategyFactory{
		"guided": backfill.Guided(),
		"hybrid": backfill.Hybrid(),
	}

	run := func(t *testing.T, factory uniqlist.StrategyFactory, boost bool) uniqlist.GenerateRequest {
		cfg := uniqlist.DefaultConfig()
		cfg.FirstRoundBoost = boost

		backend := tt.NewMockBackend().
			AddItems("Merlot", "Shiraz", "Malbec", "Riesling",
				"Syrah", "Grenache", "Nebbiolo"). // pass-1: 7 of 10
			AddItems("Gamay", "Zinfandel", "Tempranillo") // round 1 completes

		engine := uniqlist.New(backend, factory, cfg)
		items, diags, err := engine.Generate(context.Background(), "red wines", 10, nil)

		require.NoError(t, err)
		require.Len(t, items, 10)
		require.True(t, diags.Success)
		require.Equal(t, 2, backend.CallCount())
		return backend.CapturedRequests[1]
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			plain := run(t, factory, false)
			boosted := run(t, factory, true)

			cfg := uniqlist.DefaultConfig()
			assert.Equal(t,
				uniqlist.BoostTokens(cfg.Budget, plain.MaxResponseTokens),
				boosted.MaxResponseTokens)
			assert.Greater(t, boosted.MaxResponseTokens, plain.MaxResponseTokens)
		})
	}
}
