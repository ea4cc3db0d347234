package castkeep

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castkeep/castkeep/ai/mock"
	"github.com/castkeep/castkeep/ingestion"
	"github.com/castkeep/castkeep/search"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithAIProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.ItemRepository())
		assert.NotNil(t, db.SegmentRepository())
		assert.NotNil(t, db.VectorIndex())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabaseBuildsComponents(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunking(200, 40))
	require.NoError(t, err)
	assert.NotNil(t, pipeline)

	searcher, err := db.NewSearcher(search.WithLogger(nil))
	require.NoError(t, err)
	assert.NotNil(t, searcher)

	reindexer, err := db.NewReindexer(nil, io.Discard)
	require.NoError(t, err)
	assert.NotNil(t, reindexer)
}

// End-to-end: ingest through the database-built pipeline, then find the
// content through the database-built searcher.
func TestDatabaseIngestAndSearch(t *testing.T) {
	provider := mock.NewMockProvider()
	db, err := NewDatabase("", WithInMemory(),
		WithAIProvider(provider),
		WithFetcher(&stubFetcher{dir: t.TempDir()}))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunking(16, 4))
	require.NoError(t, err)

	ctx := context.Background()
	result, err := pipeline.Ingest(ctx, "ep-001", nil)
	require.NoError(t, err)
	require.Positive(t, result.SegmentsCreated)

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	resp, err := searcher.Search(ctx, &search.Request{Query: "mock transcript"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, "ep-001", resp.Hits[0].Item.Id)
}

type stubFetcher struct {
	dir string
}

func (f *stubFetcher) Fetch(ctx context.Context, itemID string) (string, error) {
	path := filepath.Join(f.dir, itemID+".m4a")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func TestDatabaseClose(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.True(t, db.backend.IsClosed())
}
