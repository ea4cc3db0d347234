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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/chunker"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/media"
	"github.com/castkeep/castkeep/storage"
)

// Pipeline orchestrates item ingestion: acquire audio, transcribe, extract
// insights, then chunk and embed the transcript. Ingest is idempotent per
// item id: a content-complete item short-circuits the expensive stages, and
// segment writes are insert-if-absent, so re-running an item never
// duplicates data.
type Pipeline struct {
	items    storage.ItemRepository
	segments storage.SegmentRepository
	vectors  storage.VectorIndex
	provider ai.AIProvider
	fetcher  media.Fetcher
	splitter *chunker.Chunker
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChunking sets the segmentation parameters.
// Defaults are chunker.DefaultTargetLen and chunker.DefaultOverlap.
func WithChunking(targetLen, overlap int) Option {
	return func(p *Pipeline) error {
		splitter, err := chunker.New(targetLen, overlap)
		if err != nil {
			return err
		}
		p.splitter = splitter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	items storage.ItemRepository,
	segments storage.SegmentRepository,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	fetcher media.Fetcher,
	opts ...Option,
) (*Pipeline, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if segments == nil {
		return nil, ErrSegmentRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	splitter, err := chunker.New(chunker.DefaultTargetLen, chunker.DefaultOverlap)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		items:    items,
		segments: segments,
		vectors:  vectors,
		provider: provider,
		fetcher:  fetcher,
		splitter: splitter,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	// KeywordHints bias the transcriber towards domain vocabulary.
	KeywordHints []string

	// Metadata to attach to the item record (e.g. "source", "channel").
	Metadata map[string]string

	// Force re-runs acquisition, transcription, and extraction even when a
	// content-complete item already exists, replacing its segments and
	// vectors. The item keeps its CreatedAt.
	Force bool
}

// IngestResult reports what an ingestion run produced.
type IngestResult struct {
	Item     *core.Item
	Segments []*core.Segment

	// SegmentsCreated is the number of segment rows backing the item after
	// this run. Re-running the same content reports the same count.
	SegmentsCreated int

	// Reused is true when transcript and insights came from an existing
	// content-complete item instead of the transcription stages.
	Reused bool
}

// runContext carries state between pipeline stages for a single item.
type runContext struct {
	itemID string
	runID  string
	opts   IngestOptions

	existing   *core.Item // Existing record found by the lookup stage, if any
	reused     bool       // Transcript and insights taken from existing
	audioPath  string
	transcript string
	insights   *core.Insights
	segments   []*core.Segment
	rechunked  bool // Segments were produced by this run's splitter
	created    int  // Segment rows newly inserted by this run
}

// Ingest runs the full pipeline for one item id.
//
// Stage order: CHECK_EXISTING, ACQUIRE_CONTENT, TRANSCRIBE, EXTRACT_INSIGHTS,
// CHUNK_AND_EMBED. A content-complete existing item skips the middle three
// stages and passes its stored segments through CHUNK_AND_EMBED untouched;
// segments are rebuilt from the stored transcript only when they are missing.
// Failures carry the stage name via StageError. No item record is written
// until the run completes, so a failed run leaves no partial item.
func (p *Pipeline) Ingest(ctx context.Context, itemID string, opts *IngestOptions) (*IngestResult, error) {
	if itemID == "" {
		return nil, core.ErrEmptyItemID
	}
	if opts == nil {
		opts = &IngestOptions{}
	}

	run := &runContext{
		itemID: itemID,
		runID:  uuid.NewString(),
		opts:   *opts,
	}
	logger := p.logger.With("item", itemID, "run", run.runID)

	stages := []struct {
		name string
		fn   func(context.Context, *slog.Logger, *runContext) error
	}{
		{StageCheckExisting, p.checkExisting},
		{StageAcquireContent, p.acquireContent},
		{StageTranscribe, p.transcribe},
		{StageExtractInsights, p.extractInsights},
		{StageChunkAndEmbed, p.chunkAndEmbed},
	}

	for _, stage := range stages {
		if err := stage.fn(ctx, logger, run); err != nil {
			logger.Error("ingestion failed", "stage", stage.name, "err", err)
			return nil, &StageError{Stage: stage.name, Err: err}
		}
	}

	item, err := p.storeItem(ctx, run)
	if err != nil {
		logger.Error("ingestion failed", "stage", StageChunkAndEmbed, "err", err)
		return nil, &StageError{Stage: StageChunkAndEmbed, Err: err}
	}

	logger.Info("ingestion complete",
		"segments", len(run.segments),
		"inserted", run.created,
		"reused", run.reused)

	return &IngestResult{
		Item:            item,
		Segments:        run.segments,
		SegmentsCreated: len(run.segments),
		Reused:          run.reused,
	}, nil
}

// checkExisting looks up the item and decides whether the transcription
// stages can be skipped. Lookup failures other than not-found are logged and
// treated as a miss: worst case the item is re-processed, which later stages
// absorb without duplicating data.
func (p *Pipeline) checkExisting(ctx context.Context, logger *slog.Logger, run *runContext) error {
	item, err := p.items.GetItem(ctx, run.itemID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("item lookup failed, treating as new", "err", err)
		}
		return nil
	}

	run.existing = item
	if run.opts.Force {
		logger.Info("forced re-ingestion of existing item")
		return nil
	}
	if item.ContentComplete() {
		run.reused = true
		run.transcript = item.Transcript
		run.insights = &item.Insights
		logger.Info("existing content reused, skipping transcription stages")
	}
	return nil
}

// acquireContent downloads the audio track for the item.
func (p *Pipeline) acquireContent(ctx context.Context, logger *slog.Logger, run *runContext) error {
	if run.reused {
		return nil
	}

	audioPath, err := p.fetcher.Fetch(ctx, run.itemID)
	if err != nil {
		return err
	}
	run.audioPath = audioPath
	logger.Debug("audio acquired", "path", audioPath)
	return nil
}

// transcribe converts the audio file to text and deletes the file as soon as
// the transcript is in hand. Audio is transient by contract.
func (p *Pipeline) transcribe(ctx context.Context, logger *slog.Logger, run *runContext) error {
	if run.reused {
		return nil
	}

	transcript, err := p.provider.Transcriber().Transcribe(ctx, run.audioPath, run.opts.KeywordHints)
	if err != nil {
		return err
	}
	if transcript == "" {
		return ErrEmptyTranscript
	}

	if err := os.Remove(run.audioPath); err != nil {
		logger.Warn("failed to remove audio file", "path", run.audioPath, "err", err)
	}
	run.audioPath = ""
	run.transcript = transcript
	return nil
}

// extractInsights derives the structured insight set from the transcript.
func (p *Pipeline) extractInsights(ctx context.Context, logger *slog.Logger, run *runContext) error {
	if run.reused {
		return nil
	}

	insights, err := p.provider.InsightExtractor().ExtractInsights(ctx, run.transcript)
	if err != nil {
		return err
	}
	run.insights = insights
	logger.Debug("insights extracted", "topics", len(insights.KeyTopics), "tags", len(insights.Tags))
	return nil
}

// chunkAndEmbed splits the transcript into segments, embeds them, and writes
// segments and vectors. A run that reuses a content-complete item returns the
// stored segments without embedding anything; chunking runs only when the
// segments are genuinely missing or the run was forced. Re-chunking an
// existing item replaces its previous segmentation; segment inserts stay
// insert-if-absent so concurrent runs of the same new item cannot duplicate
// rows.
func (p *Pipeline) chunkAndEmbed(ctx context.Context, logger *slog.Logger, run *runContext) error {
	if run.reused {
		stored, err := p.segments.GetSegments(ctx, run.itemID)
		if err != nil {
			return err
		}
		if len(stored) > 0 {
			run.segments = stored
			logger.Debug("stored segments reused", "count", len(stored))
			return nil
		}
		logger.Warn("content-complete item has no stored segments, rebuilding")
	}

	run.rechunked = true
	chunks := p.splitter.Split(run.transcript)
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	if err := p.vectors.EnsureNamespace(ctx, len(vectors[0])); err != nil {
		return err
	}

	// Re-chunking over an existing item replaces its segmentation wholesale:
	// rows and vectors left over from a previous chunking must not survive
	// next to the new ones.
	if run.existing != nil {
		if err := p.segments.DeleteSegments(ctx, run.itemID); err != nil {
			return err
		}
		if err := p.vectors.DeleteVectors(ctx, run.itemID); err != nil {
			return err
		}
	}

	segments := make([]*core.Segment, len(chunks))
	entries := make([]*core.VectorEntry, len(chunks))
	for i, chunk := range chunks {
		segment := &core.Segment{
			ItemId:        run.itemID,
			Index:         i,
			Content:       chunk.Text,
			Vector:        vectors[i],
			TotalSegments: len(chunks),
			KeyTopics:     run.insights.KeyTopics,
		}
		segments[i] = segment
		entries[i] = &core.VectorEntry{
			Key:    segment.Key(),
			ItemId: run.itemID,
			Vector: vectors[i],
		}

		inserted, err := p.segments.InsertSegment(ctx, segment)
		if err != nil {
			return err
		}
		if inserted {
			run.created++
		}
	}

	if err := p.vectors.UpsertVectors(ctx, entries...); err != nil {
		return err
	}

	run.segments = segments
	return nil
}

// storeItem writes the item record as the final act of the run: transcript,
// insights, and segmentation parameters land in one atomic write.
func (p *Pipeline) storeItem(ctx context.Context, run *runContext) (*core.Item, error) {
	item := &core.Item{
		Id:           run.itemID,
		Transcript:   run.transcript,
		Insights:     *run.insights,
		ChunkCount:   len(run.segments),
		ChunkTarget:  p.splitter.TargetLen(),
		ChunkOverlap: p.splitter.Overlap(),
		Metadata:     run.opts.Metadata,
	}

	// A run that kept the stored segments also keeps the parameters that
	// produced them, regardless of this pipeline's configuration.
	if !run.rechunked && run.existing != nil {
		item.ChunkTarget = run.existing.ChunkTarget
		item.ChunkOverlap = run.existing.ChunkOverlap
	}

	// Carry forward existing metadata keys the caller didn't override.
	if run.existing != nil && run.existing.Metadata != nil {
		merged := make(map[string]string, len(run.existing.Metadata))
		for k, v := range run.existing.Metadata {
			merged[k] = v
		}
		for k, v := range run.opts.Metadata {
			merged[k] = v
		}
		item.Metadata = merged
	}

	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}
	return p.items.UpsertItem(ctx, item)
}
