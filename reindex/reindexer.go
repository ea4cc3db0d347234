// Copyright 2025 Castkeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of segments to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of segments)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every stored segment with the configured embedder and
// rebuilds the vector index namespace. Used when the embedding model
// changes: the namespace is reset to the new model's dimensionality before
// the first batch lands.
type Reindexer struct {
	items     storage.ItemRepository
	segments  storage.SegmentRepository
	vectors   storage.VectorIndex
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	items storage.ItemRepository,
	segments storage.SegmentRepository,
	vectors storage.VectorIndex,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reindexer, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if segments == nil {
		return nil, ErrSegmentRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reindexer{
		items:     items,
		segments:  segments,
		vectors:   vectors,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(segments, vectors, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run executes the reindexing operation. Every segment of every item is
// re-embedded; the namespace is reset (dropping the old vectors) once the
// new dimensionality is known from the first embedded batch.
func (r *Reindexer) Run(ctx context.Context) error {
	items, err := r.items.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	var batches [][]*core.Segment
	total := 0
	for _, item := range items {
		segments, err := r.segments.GetSegments(ctx, item.Id)
		if err != nil {
			return fmt.Errorf("failed to load segments for %s: %w", item.Id, err)
		}
		total += len(segments)
		for start := 0; start < len(segments); start += r.config.BatchSize {
			end := min(start+r.config.BatchSize, len(segments))
			batches = append(batches, segments[start:end])
		}
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No segments found in database (0 segments)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindexing of %d segments across %d items (batch size: %d)\n",
		total, len(items), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	namespaceReset := false
	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.processor.Embed(ctx, batch); err != nil {
			return err
		}

		// The old namespace survives until the first batch embeds cleanly,
		// so a dead embedding endpoint doesn't wipe the index.
		if !namespaceReset {
			if err := r.vectors.ResetNamespace(ctx, len(batch[0].Vector)); err != nil {
				return fmt.Errorf("failed to reset vector namespace: %w", err)
			}
			namespaceReset = true
		}

		if err := r.processor.Store(ctx, batch); err != nil {
			return err
		}

		processed += len(batch)
		tracker.Update(processed)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindexing complete. Processed %d segments in %v (%.1f segments/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
