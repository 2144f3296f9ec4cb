// Package models provides TextGenerator adapters for concrete model APIs.
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/rickchristie/uniqlist"
	"github.com/rickchristie/uniqlist/schema"
)

// LCGBackend adapts a LangChainGo llms.Model to the uniqlist.TextGenerator
// contract. It translates sampling profiles into call options, asks for JSON
// mode in guided requests, and validates guided responses against the
// array-of-strings schema before handing them to the engine.
//
// Example:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	backend := models.NewLCGBackend(llm).
//	    WithModelName("gpt-4o-mini").
//	    WithSessionFactory(func() (llms.Model, error) {
//	        return openai.New(openai.WithToken(apiKey))
//	    })
type LCGBackend struct {
	model      llms.Model
	modelName  string
	newSession func() (llms.Model, error)
}

// NewLCGBackend creates a backend over the given llms.Model.
func NewLCGBackend(model llms.Model) *LCGBackend {
	return &LCGBackend{model: model}
}

// WithModelName sets the model name used in logs. Returns the backend for
// chaining.
func (b *LCGBackend) WithModelName(name string) *LCGBackend {
	b.modelName = name
	return b
}

// WithSessionFactory sets the constructor RefreshSession uses to replace the
// underlying model client. Without one, RefreshSession is a no-op.
func (b *LCGBackend) WithSessionFactory(fn func() (llms.Model, error)) *LCGBackend {
	b.newSession = fn
	return b
}

// Unwrap returns the underlying llms.Model.
func (b *LCGBackend) Unwrap() llms.Model {
	return b.model
}

// Generate implements uniqlist.TextGenerator.
func (b *LCGBackend) Generate(
	ctx context.Context,
	req *uniqlist.GenerateRequest,
) (*uniqlist.GenerateResponse, error) {
	opts := []llms.CallOption{
		llms.WithMaxTokens(req.MaxResponseTokens),
	}

	// The sampling profile is a closed set; an unknown variant is a
	// programming error, not something to paper over.
	switch s := req.Sampling.(type) {
	case uniqlist.GreedySampling:
		opts = append(opts, llms.WithTemperature(0))
	case uniqlist.TopKSampling:
		opts = append(opts, llms.WithTemperature(req.Temperature), llms.WithTopK(s.K))
	case uniqlist.TopPSampling:
		opts = append(opts, llms.WithTemperature(req.Temperature), llms.WithTopP(s.P))
	default:
		return nil, fmt.Errorf("models: unknown sampling profile %T", req.Sampling)
	}

	if req.Seed != nil {
		opts = append(opts, llms.WithSeed(int(*req.Seed)))
	}
	if req.Mode == uniqlist.ModeGuided {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, b.model, req.Prompt, opts...)
	duration := time.Since(start)
	if err != nil {
		return nil, classifyError(err)
	}

	resp := &uniqlist.GenerateResponse{Duration: duration}
	if req.Mode == uniqlist.ModeUnguided {
		resp.Text = text
		return resp, nil
	}

	items, err := decodeGuided(text)
	if err != nil {
		return nil, err
	}
	resp.Items = items
	return resp, nil
}

// RefreshSession implements uniqlist.TextGenerator.
func (b *LCGBackend) RefreshSession(ctx context.Context) error {
	if b.newSession == nil {
		return nil
	}
	model, err := b.newSession()
	if err != nil {
		return fmt.Errorf("models: refresh session: %w", err)
	}
	b.model = model
	return nil
}

// decodeGuided parses a guided-mode response strictly: a JSON array of
// strings, optionally wrapped in an {"items": [...]} object as some JSON
// modes insist on a top-level object. The decoded value is validated against
// the items schema; anything else is a decode failure for the retry policy.
func decodeGuided(text string) ([]string, error) {
	text = strings.TrimSpace(text)

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", uniqlist.ErrDecodeFailed, err)
	}

	if obj, ok := decoded.(map[string]any); ok {
		inner, ok := obj["items"]
		if !ok {
			return nil, fmt.Errorf("%w: object response without items field",
				uniqlist.ErrDecodeFailed)
		}
		decoded = inner
	}

	if err := schema.ItemsArray.Validate(decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", uniqlist.ErrDecodeFailed, err)
	}

	raw, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: response is not an array", uniqlist.ErrDecodeFailed)
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string array element", uniqlist.ErrDecodeFailed)
		}
		items = append(items, s)
	}
	return items, nil
}

// classifyError maps provider errors onto the engine's taxonomy. Providers
// don't share error types, so overflow detection is by message.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"context length",
		"context_length_exceeded",
		"maximum context",
		"context window",
	} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", uniqlist.ErrContextOverflow, err)
		}
	}
	return err
}

// Compile-time check that LCGBackend implements uniqlist.TextGenerator.
var _ uniqlist.TextGenerator = (*LCGBackend)(nil)
