package uniqlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassOneCount(t *testing.T) {
	cfg := DefaultBudgetConfig()

	// Plenty of budget: over-generation factor wins.
	assert.Equal(t, 16, PassOneCount(cfg, 10, 100, ModeGuided))
	assert.Equal(t, 8, PassOneCount(cfg, 5, 100, ModeGuided))

	// Tight budget: affordability wins.
	tight := cfg
	tight.ContextBudget = 200
	assert.Equal(t, 12, PassOneCount(tight, 10, 100, ModeGuided)) // (200-100)/8

	// Never below 1, even with no budget left.
	assert.Equal(t, 1, PassOneCount(tight, 10, 200, ModeGuided))
}

func TestPassOneMaxTokens(t *testing.T) {
	cfg := DefaultBudgetConfig()

	assert.Equal(t, 128, PassOneMaxTokens(cfg, 16, ModeGuided))
	assert.Equal(t, 224, PassOneMaxTokens(cfg, 16, ModeUnguided))

	// Capped at the ceiling.
	assert.Equal(t, cfg.ResponseTokenCeiling, PassOneMaxTokens(cfg, 100000, ModeGuided))
}

func TestBackfillCount(t *testing.T) {
	cfg := DefaultBudgetConfig()

	// The end-to-end scenario numbers: N=10, 3 missing.
	// max(ceil(3 x 1.5), ceil(0.4 x 10)) = max(5, 4) = 5.
	assert.Equal(t, 5, BackfillCount(cfg, 10, 3))

	// Floor dominates for tiny deltas.
	assert.Equal(t, 4, BackfillCount(cfg, 10, 1))

	// Nothing missing, nothing requested.
	assert.Equal(t, 0, BackfillCount(cfg, 10, 0))

	// At least 1 while anything is missing.
	small := cfg
	small.BackfillMultiplier = 0.1
	small.MinBackfillFraction = 0
	assert.Equal(t, 1, BackfillCount(small, 1, 1))
}

func TestResponseTokensFor(t *testing.T) {
	cfg := DefaultBudgetConfig()

	// Unguided costs more per item than guided.
	guided := ResponseTokensFor(cfg, 10, 100, ModeGuided)
	unguided := ResponseTokensFor(cfg, 10, 100, ModeUnguided)
	assert.Equal(t, 80, guided)
	assert.Equal(t, 140, unguided)
	assert.Greater(t, unguided, guided)

	// Clamped to the headroom share of the remaining budget.
	tight := cfg
	tight.ContextBudget = 200
	clamped := ResponseTokensFor(tight, 1000, 100, ModeGuided)
	assert.Equal(t, 90, clamped) // 0.9 x (200-100)

	// Never above the context budget, never below 1.
	assert.GreaterOrEqual(t, ResponseTokensFor(tight, 1, 200, ModeGuided), 1)
	assert.LessOrEqual(t, ResponseTokensFor(cfg, 100000, 0, ModeUnguided), cfg.ContextBudget)
}

func TestBoostTokens(t *testing.T) {
	cfg := DefaultBudgetConfig()

	assert.Equal(t, 180, BoostTokens(cfg, 100))
	assert.Equal(t, cfg.ResponseTokenCeiling, BoostTokens(cfg, 1500))
}

func TestChunkByTokenBudget_RoundTrip(t *testing.T) {
	items := []string{
		"alpha", "beta", "gamma", "delta", "epsilon",
		"a much longer item that costs more tokens than the short ones",
		"zeta", "eta", "theta",
	}
	budget := 10

	chunks := ChunkByTokenBudget(items, budget)
	require.NotEmpty(t, chunks)

	// Flattening recovers the input exactly.
	var flattened []string
	for _, chunk := range chunks {
		flattened = append(flattened, chunk...)
	}
	assert.Equal(t, items, flattened)

	// Every multi-item chunk respects the ceiling. A single oversized item
	// gets its own chunk rather than being dropped.
	for _, chunk := range chunks {
		total := 0
		for _, item := range chunk {
			total += EstimateTokens(item)
		}
		if len(chunk) > 1 {
			assert.LessOrEqual(t, total, budget)
		}
	}
}

func TestChunkByTokenBudget_Empty(t *testing.T) {
	assert.Nil(t, ChunkByTokenBudget(nil, 10))
}
