package uniqlist

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GenerationMode selects how the backend is asked to return items.
type GenerationMode string

const (
	// ModeGuided constrains the backend to a fixed array-of-strings schema.
	ModeGuided GenerationMode = "guided"

	// ModeUnguided requests freeform text that is parsed tolerantly with
	// [ExtractItems].
	ModeUnguided GenerationMode = "unguided"
)

// -----------------------------------------------------------------------------
// Sampling Profiles
// -----------------------------------------------------------------------------

// SamplingProfile is a closed set of decoder configurations. Code that
// translates a profile into backend options must type-switch over all three
// variants: [GreedySampling], [TopKSampling], and [TopPSampling].
type SamplingProfile interface {
	// Describe returns a short human-readable descriptor, e.g. "top-k(40)".
	// Used in telemetry and logs.
	Describe() string

	samplingProfile()
}

// GreedySampling always picks the most likely token. Deterministic for a
// given prompt and session; used by the last-mile request.
type GreedySampling struct{}

func (GreedySampling) Describe() string { return "greedy" }
func (GreedySampling) samplingProfile() {}

// TopKSampling samples from the K most likely tokens.
type TopKSampling struct {
	K int
}

func (s TopKSampling) Describe() string { return fmt.Sprintf("top-k(%d)", s.K) }
func (TopKSampling) samplingProfile()   {}

// TopPSampling samples from the smallest token set whose cumulative
// probability exceeds P.
type TopPSampling struct {
	P float64
}

func (s TopPSampling) Describe() string { return fmt.Sprintf("top-p(%.2f)", s.P) }
func (TopPSampling) samplingProfile()   {}

// -----------------------------------------------------------------------------
// Backend Contract
// -----------------------------------------------------------------------------

// GenerateRequest is a single call to the text-generation backend.
type GenerateRequest struct {
	// Prompt is the full prompt text.
	Prompt string

	// Mode selects guided (schema-constrained) or unguided (freeform) output.
	Mode GenerationMode

	// Sampling is the decoder profile for this call.
	Sampling SamplingProfile

	// Temperature is the sampling temperature.
	Temperature float64

	// Seed is the sampling seed. Nil means unseeded (backend default).
	Seed *uint64

	// MaxResponseTokens caps the response length.
	MaxResponseTokens int
}

// GenerateResponse is the backend's answer to a [GenerateRequest].
//
// In guided mode Items is populated and Text is empty. In unguided mode Text
// holds the raw response and Items is nil. A response with zero items and no
// error is valid-but-empty; it is not a parse failure.
type GenerateResponse struct {
	// Items is the schema-constrained output (guided mode).
	Items []string

	// Text is the raw freeform output (unguided mode).
	Text string

	// Duration is how long the backend call took.
	Duration time.Duration
}

// TextGenerator is the engine's backend contract. Implementations wrap a
// concrete model API; see models.LCGBackend for the LangChainGo adapter.
//
// Generate must classify failures using the sentinel errors below so the
// retry policy can distinguish fatal from retryable conditions.
type TextGenerator interface {
	// Generate issues one request and returns the response.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// RefreshSession discards the current backend session and creates a
	// fresh one. Called by the retry policy as session hygiene after
	// repeated decode failures. Implementations without session state may
	// make this a no-op.
	RefreshSession(ctx context.Context) error
}

// -----------------------------------------------------------------------------
// Error Taxonomy
// -----------------------------------------------------------------------------

// ErrContextOverflow indicates the request exceeded the backend's context
// window. Always fatal: it is propagated immediately without retry, because
// retrying the same oversized prompt cannot succeed.
var ErrContextOverflow = errors.New("uniqlist: context window overflow")

// ErrDecodeFailed indicates the backend produced output that could not be
// decoded against the requested schema. Retryable.
var ErrDecodeFailed = errors.New("uniqlist: response decoding failed")

// ErrNoItems indicates an unguided response contained nothing salvageable,
// not even quoted substrings. Treated as an ordinary failed attempt.
var ErrNoItems = errors.New("uniqlist: no items extracted from response")

// IsFatal reports whether err must end the run immediately.
func IsFatal(err error) bool {
	return errors.Is(err, ErrContextOverflow)
}
