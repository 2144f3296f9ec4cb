package uniqlist

import (
	"fmt"
	"math"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// BudgetConfig holds the token-budget arithmetic constants. All functions in
// this file are pure arithmetic over this config: no I/O, no hidden state.
type BudgetConfig struct {
	// ContextBudget is the fixed context window, in tokens. No request may
	// ask for more response tokens than this window allows.
	ContextBudget int `yaml:"context_budget"`

	// OverGenFactor is the pass-1 over-generation multiplier: pass-1 asks
	// for ceil(N x OverGenFactor) items to absorb expected duplicates.
	OverGenFactor float64 `yaml:"over_gen_factor"`

	// BackfillMultiplier scales the missing count into a backfill request.
	BackfillMultiplier float64 `yaml:"backfill_multiplier"`

	// MinBackfillFraction floors each backfill request at a fraction of N,
	// so late rounds don't ask for trivially small deltas.
	MinBackfillFraction float64 `yaml:"min_backfill_fraction"`

	// GuidedTokensPerItem estimates response tokens per item in guided
	// (schema-constrained) mode.
	GuidedTokensPerItem float64 `yaml:"guided_tokens_per_item"`

	// UnguidedTokensPerItem estimates response tokens per item in unguided
	// mode. Freeform text costs more tokens per item than schema output.
	UnguidedTokensPerItem float64 `yaml:"unguided_tokens_per_item"`

	// GuidedHeadroom is the fraction of the remaining response budget a
	// guided request may consume.
	GuidedHeadroom float64 `yaml:"guided_headroom"`

	// UnguidedHeadroom is the guided counterpart for unguided requests,
	// lower because freeform responses overshoot their estimates more.
	UnguidedHeadroom float64 `yaml:"unguided_headroom"`

	// BoostFactor multiplies max-response-tokens on escalation retries.
	BoostFactor float64 `yaml:"boost_factor"`

	// ResponseTokenCeiling is the absolute cap on max-response-tokens,
	// boosted or not.
	ResponseTokenCeiling int `yaml:"response_token_ceiling"`
}

// DefaultBudgetConfig returns the budget defaults, tuned for a 4k context
// window.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		ContextBudget:         4096,
		OverGenFactor:         1.6,
		BackfillMultiplier:    1.5,
		MinBackfillFraction:   0.4,
		GuidedTokensPerItem:   8,
		UnguidedTokensPerItem: 14,
		GuidedHeadroom:        0.9,
		UnguidedHeadroom:      0.75,
		BoostFactor:           1.8,
		ResponseTokenCeiling:  2048,
	}
}

// Validate checks the budget constants.
func (c *BudgetConfig) Validate() error {
	if c.ContextBudget < 1 {
		return fmt.Errorf("uniqlist: ContextBudget must be >= 1, got %d", c.ContextBudget)
	}
	if c.GuidedTokensPerItem <= 0 || c.UnguidedTokensPerItem <= 0 {
		return fmt.Errorf("uniqlist: per-item token estimates must be > 0")
	}
	if c.BoostFactor < 1 {
		return fmt.Errorf("uniqlist: BoostFactor must be >= 1, got %f", c.BoostFactor)
	}
	return nil
}

// tokensPerItem returns the per-item estimate for a mode.
func (c *BudgetConfig) tokensPerItem(mode GenerationMode) float64 {
	if mode == ModeUnguided {
		return c.UnguidedTokensPerItem
	}
	return c.GuidedTokensPerItem
}

// headroom returns the response-budget share for a mode.
func (c *BudgetConfig) headroom(mode GenerationMode) float64 {
	if mode == ModeUnguided {
		return c.UnguidedHeadroom
	}
	return c.GuidedHeadroom
}

// PassOneCount computes the pass-1 over-generation count M:
// min(ceil(N x OverGenFactor), responseBudget / tokensPerItem), at least 1.
func PassOneCount(cfg BudgetConfig, n, promptTokens int, mode GenerationMode) int {
	wanted := int(math.Ceil(float64(n) * cfg.OverGenFactor))

	responseBudget := cfg.ContextBudget - promptTokens
	affordable := int(float64(responseBudget) / cfg.tokensPerItem(mode))
	if affordable < wanted {
		wanted = affordable
	}
	if wanted < 1 {
		wanted = 1
	}
	return wanted
}

// PassOneMaxTokens computes the pass-1 response token cap for M items.
func PassOneMaxTokens(cfg BudgetConfig, m int, mode GenerationMode) int {
	tokens := int(math.Ceil(cfg.tokensPerItem(mode) * float64(m)))
	if tokens > cfg.ResponseTokenCeiling {
		tokens = cfg.ResponseTokenCeiling
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// BackfillCount computes how many items a backfill round requests:
// max(ceil(missing x BackfillMultiplier), ceil(MinBackfillFraction x N)).
// Always at least 1 while any item is missing.
func BackfillCount(cfg BudgetConfig, n, missing int) int {
	if missing <= 0 {
		return 0
	}
	byMissing := int(math.Ceil(float64(missing) * cfg.BackfillMultiplier))
	byFloor := int(math.Ceil(cfg.MinBackfillFraction * float64(n)))
	count := byMissing
	if byFloor > count {
		count = byFloor
	}
	if count < 1 {
		count = 1
	}
	return count
}

// ResponseTokensFor computes max-response-tokens for a request of count
// items, clamped to the mode's share of the remaining response budget and to
// the absolute ceiling. Never exceeds the context budget; never below 1.
func ResponseTokensFor(cfg BudgetConfig, count, promptTokens int, mode GenerationMode) int {
	tokens := int(math.Ceil(cfg.tokensPerItem(mode) * float64(count)))

	responseBudget := cfg.ContextBudget - promptTokens
	clamp := int(cfg.headroom(mode) * float64(responseBudget))
	if tokens > clamp {
		tokens = clamp
	}
	if tokens > cfg.ResponseTokenCeiling {
		tokens = cfg.ResponseTokenCeiling
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// BoostTokens applies the escalation multiplier to a token cap, capped at
// the absolute ceiling.
func BoostTokens(cfg BudgetConfig, tokens int) int {
	boosted := int(math.Ceil(float64(tokens) * cfg.BoostFactor))
	if boosted > cfg.ResponseTokenCeiling {
		boosted = cfg.ResponseTokenCeiling
	}
	return boosted
}

// -----------------------------------------------------------------------------
// Token Estimation & Chunking
// -----------------------------------------------------------------------------

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens estimates the token count of a text using the cl100k_base
// encoding. Falls back to a bytes/4 heuristic if the encoding cannot be
// loaded (e.g. offline without a cached BPE file).
func EstimateTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoding = enc
		}
	})
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return len(text)/4 + 1
}

// ChunkByTokenBudget splits items into consecutive chunks whose estimated
// token totals stay within budget. Order is preserved: flattening the chunks
// recovers the input exactly. An item that alone exceeds the budget gets its
// own chunk rather than being dropped.
func ChunkByTokenBudget(items []string, budget int) [][]string {
	if len(items) == 0 {
		return nil
	}

	var chunks [][]string
	var current []string
	used := 0

	for _, item := range items {
		cost := EstimateTokens(item)
		if len(current) > 0 && used+cost > budget {
			chunks = append(chunks, current)
			current = nil
			used = 0
		}
		current = append(current, item)
		used += cost
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
