// Package testutil provides shared fakes for unit tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// MockGenerator implements core.Generator for testing.
type MockGenerator struct {
	generateFunc func(context.Context, []core.Message) (string, error)
	calls        [][]core.Message
	mu           sync.Mutex
}

// NewMockGenerator creates a generator that echoes a canned response.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// WithGenerateFunc sets a custom generate function.
func (m *MockGenerator) WithGenerateFunc(fn func(context.Context, []core.Message) (string, error)) *MockGenerator {
	m.generateFunc = fn
	return m
}

// Generate records the call and returns the configured response.
func (m *MockGenerator) Generate(ctx context.Context, messages []core.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()

	if m.generateFunc != nil {
		return m.generateFunc(ctx, messages)
	}

	preview := ""
	if len(messages) > 0 {
		preview = messages[len(messages)-1].Content
		if len(preview) > 50 {
			preview = preview[:50]
		}
	}
	return fmt.Sprintf("Mock response for: %s", preview), nil
}

// GenerateStream returns the Generate response as a single chunk.
func (m *MockGenerator) GenerateStream(ctx context.Context, messages []core.Message) (<-chan string, error) {
	out, err := m.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	ch := make(chan string, 1)
	ch <- out
	close(ch)
	return ch, nil
}

// Calls returns the recorded message batches.
func (m *MockGenerator) Calls() [][]core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]core.Message(nil), m.calls...)
}

// MockSearchProvider implements core.SearchProvider for testing.
type MockSearchProvider struct {
	name       string
	searchFunc func(context.Context, string, int) ([]core.SearchResult, error)
	queries    []string
	mu         sync.Mutex
}

// NewMockSearchProvider creates a provider returning no results.
func NewMockSearchProvider(name string) *MockSearchProvider {
	return &MockSearchProvider{name: name}
}

// WithSearchFunc sets a custom search function.
func (m *MockSearchProvider) WithSearchFunc(fn func(context.Context, string, int) ([]core.SearchResult, error)) *MockSearchProvider {
	m.searchFunc = fn
	return m
}

// Name returns the provider name.
func (m *MockSearchProvider) Name() string { return m.name }

// Search records the query and returns the configured results.
func (m *MockSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, maxResults)
	}
	return nil, nil
}

// Queries returns the recorded queries.
func (m *MockSearchProvider) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// MockQuoteProvider implements core.QuoteProvider for testing.
type MockQuoteProvider struct {
	Context string
	Err     error
}

// QuoteContext returns the configured context.
func (m *MockQuoteProvider) QuoteContext(_ context.Context, _ string) (string, error) {
	return m.Context, m.Err
}
