package ai

import (
	"context"

	"github.com/castkeep/castkeep/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Transcriber converts an audio artifact into transcript text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe produces the full transcript for the audio file at audioPath.
	// The optional vocabularyHints bias the recognizer towards domain terms
	// that would otherwise be misheard.
	// Returns an error if transcription fails; an empty transcript is treated
	// as a failure by callers.
	Transcribe(ctx context.Context, audioPath string, vocabularyHints []string) (string, error)
}

// InsightExtractor derives structured insights from a transcript.
// Implementations must be thread-safe for concurrent use.
type InsightExtractor interface {
	// ExtractInsights analyzes a transcript and returns the summary, key
	// topics, speakers, action items, and tags. Speakers and action items may
	// be empty when the transcript does not reveal them.
	// Returns an error if extraction fails or the output violates the schema;
	// callers never receive a partially-populated insight object.
	ExtractInsights(ctx context.Context, transcript string) (*core.Insights, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Transcriber, and InsightExtractor
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Transcriber returns the speech-to-text service.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// InsightExtractor returns the structured-extraction service.
	// The returned InsightExtractor is safe for concurrent use.
	InsightExtractor() InsightExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
