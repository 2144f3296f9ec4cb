package uniqlist

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use strings like "60s".
// Plain integers are taken as nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("uniqlist: invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("uniqlist: invalid duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// PromptStyle selects the pass-1 prompt wording.
type PromptStyle string

const (
	// PromptStrict issues an imperative instruction to produce exactly M
	// distinct items.
	PromptStrict PromptStyle = "strict"

	// PromptMinimal asks for "varied, concrete" items and explicitly
	// discourages placeholder filler.
	PromptMinimal PromptStyle = "minimal"
)

// Config holds every tunable of the engine. All former ambient globals of
// the generation pipeline (sampling defaults, feature flags, heuristic
// thresholds) live here so that nothing in the engine reads process-wide
// mutable state.
//
// Use [DefaultConfig] and override fields, or [LoadConfig] to read a YAML
// file on top of the defaults.
type Config struct {
	// MaxPasses is the total number of generation passes per run, counting
	// pass-1. With the default of 3 a run gets at most 2 backfill rounds.
	MaxPasses int `yaml:"max_passes"`

	// MaxAttempts is the per-request retry budget in the client.
	MaxAttempts int `yaml:"max_attempts"`

	// CallTimeout is the hard wall-clock timeout for a single backend call.
	// A timeout counts as an ordinary attempt failure.
	CallTimeout Duration `yaml:"call_timeout"`

	// BreakerThreshold is the number of consecutive no-progress rounds that
	// trips the circuit breaker. Empirically tuned; see [CircuitBreaker].
	BreakerThreshold int `yaml:"breaker_threshold"`

	// DupRateThreshold is the per-round duplicate rate at which the hybrid
	// strategy considers guided mode exhausted. Empirically tuned.
	DupRateThreshold float64 `yaml:"dup_rate_threshold"`

	// AvoidWindowSize is how many seen keys are sampled into each backfill
	// prompt's avoid-list.
	AvoidWindowSize int `yaml:"avoid_window_size"`

	// AvoidWindowStride is how far the avoid-list window advances per round,
	// wrapping around the seen set.
	AvoidWindowStride int `yaml:"avoid_window_stride"`

	// OffenderHintCount is how many of the most-repeated duplicates are
	// named in backfill prompts.
	OffenderHintCount int `yaml:"offender_hint_count"`

	// RetryOffenderCount is how many offenders the zero-progress escalation
	// retry names explicitly.
	RetryOffenderCount int `yaml:"retry_offender_count"`

	// UnguidedRoundCap bounds unguided rounds after a hybrid switch.
	UnguidedRoundCap int `yaml:"unguided_round_cap"`

	// Style selects the pass-1 prompt wording.
	Style PromptStyle `yaml:"style"`

	// FirstRoundBoost makes round 1 of guided backfill use a boosted token
	// budget proactively instead of waiting for a stall.
	FirstRoundBoost bool `yaml:"first_round_boost"`

	// Budget holds the token-budget arithmetic constants.
	Budget BudgetConfig `yaml:"budget"`

	// Sampling is the default high-entropy decoder profile for pass-1 and
	// backfill rounds. The last-mile request always uses [GreedySampling].
	Sampling SamplingProfile `yaml:"-"`

	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature"`

	// RetryTemperature is the escalated temperature used by the
	// zero-progress round retry.
	RetryTemperature float64 `yaml:"retry_temperature"`

	// SeedRing is the deterministic ring of fallback seeds the retry policy
	// rotates through. Must be non-empty.
	SeedRing []uint64 `yaml:"seed_ring"`

	// Normalizer configures the dedup canonicalizer.
	Normalizer NormalizerConfig `yaml:"normalizer"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxPasses:          3,
		MaxAttempts:        4,
		CallTimeout:        Duration(60 * time.Second),
		BreakerThreshold:   2,
		DupRateThreshold:   0.5,
		AvoidWindowSize:    40,
		AvoidWindowStride:  20,
		OffenderHintCount:  5,
		RetryOffenderCount: 10,
		UnguidedRoundCap:   2,
		Style:              PromptStrict,
		FirstRoundBoost:    false,
		Budget:             DefaultBudgetConfig(),
		Sampling:           TopPSampling{P: 0.95},
		Temperature:        1.0,
		RetryTemperature:   1.3,
		SeedRing:           []uint64{42, 1337, 7919, 104729, 611953},
		Normalizer:         DefaultNormalizerConfig(),
	}
}

// LoadConfig reads a YAML config file layered on top of [DefaultConfig].
// Fields absent from the file keep their defaults. The Sampling profile is
// not configurable via YAML; set it in code.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("uniqlist: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("uniqlist: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the config for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("uniqlist: MaxPasses must be >= 1, got %d", c.MaxPasses)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("uniqlist: MaxAttempts must be >= 1, got %d", c.MaxAttempts)
	}
	if c.BreakerThreshold < 1 {
		return fmt.Errorf("uniqlist: BreakerThreshold must be >= 1, got %d", c.BreakerThreshold)
	}
	if len(c.SeedRing) == 0 {
		return fmt.Errorf("uniqlist: SeedRing must not be empty")
	}
	if c.Style != PromptStrict && c.Style != PromptMinimal {
		return fmt.Errorf("uniqlist: unknown prompt style %q", c.Style)
	}
	return c.Budget.Validate()
}
