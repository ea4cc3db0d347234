package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// BatchProcessor re-embeds batches of segments and writes the new vectors to
// both the segment store and the vector index.
type BatchProcessor struct {
	segments       storage.SegmentRepository
	vectors        storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(segments storage.SegmentRepository, vectors storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		segments:       segments,
		vectors:        vectors,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Embed generates embeddings for the batch and assigns them to the segments
// without persisting anything. Vectors are normalized to unit length.
func (bp *BatchProcessor) Embed(ctx context.Context, batch []*core.Segment) error {
	if len(batch) == 0 {
		return nil
	}

	texts := make([]string, len(batch))
	for i, segment := range batch {
		texts[i] = segment.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i := range batch {
		batch[i].Vector = NormalizeVector(embeddings[i])
	}
	return nil
}

// Store writes the batch's new vectors to the segment store and the vector
// index. The batch must have been passed through Embed first.
func (bp *BatchProcessor) Store(ctx context.Context, batch []*core.Segment) error {
	if len(batch) == 0 {
		return nil
	}

	if _, err := bp.segments.UpdateSegments(ctx, batch...); err != nil {
		return fmt.Errorf("failed to update segments: %w", err)
	}

	entries := make([]*core.VectorEntry, len(batch))
	for i, segment := range batch {
		entries[i] = &core.VectorEntry{
			Key:    segment.Key(),
			ItemId: segment.ItemId,
			Vector: segment.Vector,
		}
	}
	if err := bp.vectors.UpsertVectors(ctx, entries...); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}
