package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	lcschema "github.com/tmc/langchaingo/schema"

	"github.com/rickchristie/uniqlist"
	"github.com/rickchristie/uniqlist/models"
)

// fakeModel returns a canned response and captures the resolved call options.
type fakeModel struct {
	text string
	err  error

	prompt string
	opts   llms.CallOptions
}

func (m *fakeModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	for _, part := range messages[0].Parts {
		if text, ok := part.(llms.TextContent); ok {
			m.prompt = text.Text
		}
	}
	m.opts = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.text}},
	}, nil
}

func (m *fakeModel) Call(
	ctx context.Context,
	prompt string,
	options ...llms.CallOption,
) (string, error) {
	resp, err := m.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(lcschema.ChatMessageTypeHuman, prompt)},
		options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func guidedReq(prompt string) *uniqlist.GenerateRequest {
	seed := uint64(42)
	return &uniqlist.GenerateRequest{
		Prompt:            prompt,
		Mode:              uniqlist.ModeGuided,
		Sampling:          uniqlist.TopPSampling{P: 0.95},
		Temperature:       1.0,
		Seed:              &seed,
		MaxResponseTokens: 128,
	}
}

func TestLCGBackend_GuidedGenerate(t *testing.T) {
	model := &fakeModel{text: `["Alpha", "Beta"]`}
	backend := models.NewLCGBackend(model)

	resp, err := backend.Generate(context.Background(), guidedReq("list things"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, resp.Items)
	assert.Empty(t, resp.Text)

	// The request translates into call options.
	assert.Equal(t, "list things", model.prompt)
	assert.Equal(t, 128, model.opts.MaxTokens)
	assert.InDelta(t, 1.0, model.opts.Temperature, 1e-9)
	assert.InDelta(t, 0.95, model.opts.TopP, 1e-9)
	assert.Equal(t, 42, model.opts.Seed)
	assert.True(t, model.opts.JSONMode)
}

func TestLCGBackend_GuidedAcceptsItemsWrapper(t *testing.T) {
	model := &fakeModel{text: `{"items": ["Alpha", "Beta"]}`}
	backend := models.NewLCGBackend(model)

	resp, err := backend.Generate(context.Background(), guidedReq("list things"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, resp.Items)
}

func TestLCGBackend_GuidedDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "here you go: Alpha, Beta"},
		{"object without items", `{"result": ["Alpha"]}`},
		{"non-string elements", `[1, 2, 3]`},
		{"not an array", `{"items": "Alpha"}`},
		{"empty string element", `["Alpha", ""]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := models.NewLCGBackend(&fakeModel{text: tt.text})
			_, err := backend.Generate(context.Background(), guidedReq("list things"))
			assert.ErrorIs(t, err, uniqlist.ErrDecodeFailed)
		})
	}
}

func TestLCGBackend_UnguidedReturnsRawText(t *testing.T) {
	model := &fakeModel{text: "Here you go:\n[\"Alpha\", \"Beta\"]"}
	backend := models.NewLCGBackend(model)

	req := guidedReq("list things")
	req.Mode = uniqlist.ModeUnguided

	resp, err := backend.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Here you go:\n[\"Alpha\", \"Beta\"]", resp.Text)
	assert.Nil(t, resp.Items)
	assert.False(t, model.opts.JSONMode)
}

func TestLCGBackend_GreedySampling(t *testing.T) {
	model := &fakeModel{text: `["Alpha"]`}
	backend := models.NewLCGBackend(model)

	req := guidedReq("list things")
	req.Sampling = uniqlist.GreedySampling{}
	req.Temperature = 0
	req.Seed = nil

	_, err := backend.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, model.opts.Temperature)
	assert.Zero(t, model.opts.TopP)
	assert.Zero(t, model.opts.Seed)
}

func TestLCGBackend_ClassifiesContextOverflow(t *testing.T) {
	model := &fakeModel{err: errors.New(
		"This model's maximum context length is 8192 tokens")}
	backend := models.NewLCGBackend(model)

	_, err := backend.Generate(context.Background(), guidedReq("list things"))
	assert.ErrorIs(t, err, uniqlist.ErrContextOverflow)
}

func TestLCGBackend_PassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("rate limit exceeded")
	backend := models.NewLCGBackend(&fakeModel{err: boom})

	_, err := backend.Generate(context.Background(), guidedReq("list things"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, uniqlist.ErrContextOverflow)
}

func TestLCGBackend_RefreshSession(t *testing.T) {
	first := &fakeModel{text: `["Alpha"]`}
	second := &fakeModel{text: `["Beta"]`}

	backend := models.NewLCGBackend(first).
		WithSessionFactory(func() (llms.Model, error) { return second, nil })
	require.NoError(t, backend.RefreshSession(context.Background()))
	assert.Same(t, second, backend.Unwrap())

	// Without a factory, refresh is a no-op.
	bare := models.NewLCGBackend(first)
	require.NoError(t, bare.RefreshSession(context.Background()))
	assert.Same(t, first, bare.Unwrap())

	// A failing factory keeps the current session.
	failing := models.NewLCGBackend(first).
		WithSessionFactory(func() (llms.Model, error) { return nil, errors.New("down") })
	assert.Error(t, failing.RefreshSession(context.Background()))
	assert.Same(t, first, failing.Unwrap())
}
