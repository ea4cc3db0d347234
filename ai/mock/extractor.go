package mock

import (
	"context"
	"sync"

	"github.com/castkeep/castkeep/core"
)

// MockInsightExtractor is a test double for ai.InsightExtractor.
// It allows custom behavior injection via function fields.
type MockInsightExtractor struct {
	// ExtractFunc is called by ExtractInsights if set.
	// If nil, uses default deterministic behavior.
	ExtractFunc func(ctx context.Context, transcript string) (*core.Insights, error)

	mu        sync.Mutex
	callCount int
}

// NewMockInsightExtractor creates a mock extractor with default deterministic behavior.
func NewMockInsightExtractor() *MockInsightExtractor {
	return &MockInsightExtractor{}
}

// ExtractInsights returns a fixed, schema-complete insight object.
func (m *MockInsightExtractor) ExtractInsights(ctx context.Context, transcript string) (*core.Insights, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, transcript)
	}

	return &core.Insights{
		Summary:   "Mock summary of the transcript.",
		KeyTopics: []string{"mock topic"},
		Tags:      []string{"mock"},
	}, nil
}

// CallCount returns the number of times ExtractInsights was called.
func (m *MockInsightExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockInsightExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractFunc = nil
}
