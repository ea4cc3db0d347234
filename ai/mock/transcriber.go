package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, uses default deterministic behavior.
	TranscribeFunc func(ctx context.Context, audioPath string, vocabularyHints []string) (string, error)

	mu        sync.Mutex
	callCount int
	lastHints []string
}

// NewMockTranscriber creates a mock transcriber with default deterministic behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe returns a deterministic transcript derived from the audio path.
func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string, vocabularyHints []string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastHints = vocabularyHints
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, vocabularyHints)
	}

	return fmt.Sprintf("mock transcript for %s", audioPath), nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastHints returns the vocabulary hints from the most recent call.
func (m *MockTranscriber) LastHints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHints
}

// Reset clears the call count and injected behavior.
func (m *MockTranscriber) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastHints = nil
	m.TranscribeFunc = nil
}
