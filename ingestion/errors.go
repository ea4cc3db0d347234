package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrSegmentRepositoryRequired is returned when a segment repository is not provided.
	ErrSegmentRepositoryRequired = errors.New("segment repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrFetcherRequired is returned when a media fetcher is not provided.
	ErrFetcherRequired = errors.New("media fetcher required")

	// ErrEmptyTranscript is returned when transcription yields no text.
	ErrEmptyTranscript = errors.New("transcription produced no text")

	// ErrPipelineRequired is returned when a runner is built without a pipeline.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrRunnerReleased is returned when submitting to a released runner.
	ErrRunnerReleased = errors.New("runner has been released")
)

// Stage names in pipeline order.
const (
	StageCheckExisting   = "CHECK_EXISTING"
	StageAcquireContent  = "ACQUIRE_CONTENT"
	StageTranscribe      = "TRANSCRIBE"
	StageExtractInsights = "EXTRACT_INSIGHTS"
	StageChunkAndEmbed   = "CHUNK_AND_EMBED"
)

// StageError wraps a failure with the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
