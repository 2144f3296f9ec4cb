// Package tt provides shared test doubles and assertion helpers.
package tt

import (
	"context"
	"time"

	"github.com/rickchristie/uniqlist"
)

// -----------------------------------------------------------------------------
// MockBackend - implements uniqlist.TextGenerator
// -----------------------------------------------------------------------------

// MockBackend is a configurable mock backend. Responses and errors are
// queued in call order; every request is captured for verification.
type MockBackend struct {
	responses []*uniqlist.GenerateResponse
	errors    []error
	callCount int
	refreshes int

	// CapturedRequests stores a copy of every request passed to Generate,
	// in call order.
	CapturedRequests []uniqlist.GenerateRequest
}

// NewMockBackend creates an empty MockBackend. With nothing queued, calls
// return an empty guided response.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// AddItems queues a guided response with the given items.
func (m *MockBackend) AddItems(items ...string) *MockBackend {
	m.responses = append(m.responses, &uniqlist.GenerateResponse{
		Items:    items,
		Duration: time.Millisecond,
	})
	m.extendErrors()
	return m
}

// AddText queues an unguided response with the given raw text.
func (m *MockBackend) AddText(text string) *MockBackend {
	m.responses = append(m.responses, &uniqlist.GenerateResponse{
		Text:     text,
		Duration: time.Millisecond,
	})
	m.extendErrors()
	return m
}

// AddError queues an error for the next call.
func (m *MockBackend) AddError(err error) *MockBackend {
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// extendErrors pads the error queue so indices line up with responses.
func (m *MockBackend) extendErrors() {
	for len(m.errors) < len(m.responses) {
		m.errors = append(m.errors, nil)
	}
}

// CallCount returns how many times Generate was called.
func (m *MockBackend) CallCount() int {
	return m.callCount
}

// RefreshCount returns how many times RefreshSession was called.
func (m *MockBackend) RefreshCount() int {
	return m.refreshes
}

// Generate implements uniqlist.TextGenerator.
func (m *MockBackend) Generate(
	ctx context.Context,
	req *uniqlist.GenerateRequest,
) (*uniqlist.GenerateResponse, error) {
	idx := m.callCount
	m.callCount++
	m.CapturedRequests = append(m.CapturedRequests, *req)

	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if idx < len(m.responses) && m.responses[idx] != nil {
		return m.responses[idx], nil
	}
	// Default: valid-but-empty guided response.
	return &uniqlist.GenerateResponse{Items: []string{}, Duration: time.Millisecond}, nil
}

// RefreshSession implements uniqlist.TextGenerator.
func (m *MockBackend) RefreshSession(ctx context.Context) error {
	m.refreshes++
	return nil
}

// Compile-time check.
var _ uniqlist.TextGenerator = (*MockBackend)(nil)
