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


package castkeep

import (
	"io"
	"log/slog"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/ai/openai"
	"github.com/castkeep/castkeep/ingestion"
	"github.com/castkeep/castkeep/media"
	"github.com/castkeep/castkeep/reindex"
	"github.com/castkeep/castkeep/search"
	"github.com/castkeep/castkeep/storage"
	"github.com/castkeep/castkeep/storage/badger"
)

// Database bundles the stores and AI services behind one open/close
// lifecycle, and builds the pipeline, searcher, and reindexer on top of them.
type Database struct {
	backend     *badger.Backend
	itemRepo    storage.ItemRepository
	segmentRepo storage.SegmentRepository
	vectorIndex storage.VectorIndex
	provider    ai.AIProvider
	fetcher     media.Fetcher
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	fetcher  media.Fetcher
	inMemory bool
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider injects an already-built provider, bypassing the default
// OpenAI-compatible one. The database takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithFetcher sets the media fetcher used by ingestion.
// Default is media.NewYtDlpFetcher().
func WithFetcher(fetcher media.Fetcher) DatabaseOption {
	return func(o *databaseOptions) {
		o.fetcher = fetcher
	}
}

// WithInMemory opens the storage backend in memory instead of on disk.
// Useful for tests and throwaway runs; filePath is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	itemRepo, err := badger.NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	segmentRepo, err := badger.NewSegmentRepository(backend)
	if err != nil {
		itemRepo.Close()
		backend.Close()
		return nil, err
	}

	vectorIndex, err := badger.NewVectorIndex(backend)
	if err != nil {
		segmentRepo.Close()
		itemRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			vectorIndex.Close()
			segmentRepo.Close()
			itemRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	fetcher := options.fetcher
	if fetcher == nil {
		fetcher = media.NewYtDlpFetcher()
	}

	return &Database{
		backend:     backend,
		itemRepo:    itemRepo,
		segmentRepo: segmentRepo,
		vectorIndex: vectorIndex,
		provider:    provider,
		fetcher:     fetcher,
		logger:      slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.vectorIndex.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := db.segmentRepo.Close(); err != nil {
		db.logger.Error("error closing segment repository", "err", err)
		return err
	}
	if err := db.itemRepo.Close(); err != nil {
		db.logger.Error("error closing item repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ItemRepository() storage.ItemRepository {
	return db.itemRepo
}

func (db *Database) SegmentRepository() storage.SegmentRepository {
	return db.segmentRepo
}

func (db *Database) VectorIndex() storage.VectorIndex {
	return db.vectorIndex
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.itemRepo, db.segmentRepo, db.vectorIndex, db.provider, db.fetcher, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.itemRepo, db.segmentRepo, db.vectorIndex, db.provider, opts...)
}

// NewReindexer builds a reindexer over the database's stores.
// progress: where to write progress output (typically os.Stderr)
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(db.itemRepo, db.segmentRepo, db.vectorIndex, db.provider.Embedder(), config, progress)
}
