package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castkeep/castkeep/ai/mock"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
	"github.com/castkeep/castkeep/storage/badger"
)

// countingVectorIndex records how many queries reach the vector index.
type countingVectorIndex struct {
	storage.VectorIndex

	mu      sync.Mutex
	queries int
}

func (c *countingVectorIndex) QueryVectors(ctx context.Context, vector []float32, topK int, itemIDs []string) ([]*core.VectorMatch, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.VectorIndex.QueryVectors(ctx, vector, topK, itemIDs)
}

type searchFixture struct {
	searcher *Searcher
	embedder *mock.MockEmbedder
	vectors  *countingVectorIndex
}

// newSearchFixture seeds three items with orthogonal segment vectors so
// tests can steer the ranking by choosing the query vector.
//
//	ep-go:   databases theme, speaker Alice, vector (1,0,0)
//	ep-rust: databases theme, speaker Bob, vector (0,1,0)
//	ep-chef: cooking theme, speaker Carol, vector (0,0,1)
func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	items, segments, vectors, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		vectors.Close()
		segments.Close()
		items.Close()
		backend.Close()
	})

	ctx := context.Background()
	require.NoError(t, vectors.EnsureNamespace(ctx, 3))

	seed := []struct {
		id      string
		speaker string
		tag     string
		vector  []float32
	}{
		{"ep-go", "Alice", "databases", []float32{1, 0, 0}},
		{"ep-rust", "Bob", "databases", []float32{0, 1, 0}},
		{"ep-chef", "Carol", "cooking", []float32{0, 0, 1}},
	}

	for _, row := range seed {
		_, err := items.UpsertItem(ctx, &core.Item{
			Id:         row.id,
			Transcript: "transcript of " + row.id,
			Insights: core.Insights{
				Summary:  "An episode about " + row.tag + ".",
				Speakers: []string{row.speaker},
				Tags:     []string{row.tag},
			},
			ChunkCount: 1,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		segment := &core.Segment{
			ItemId:        row.id,
			Index:         0,
			Content:       "segment of " + row.id,
			Vector:        row.vector,
			TotalSegments: 1,
		}
		_, err = segments.InsertSegment(ctx, segment)
		require.NoError(t, err)
		require.NoError(t, vectors.UpsertVectors(ctx, &core.VectorEntry{
			Key:    segment.Key(),
			ItemId: row.id,
			Vector: row.vector,
		}))
	}

	embedder := mock.NewMockEmbedder()
	embedder.Dim = 3
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockTranscriber(), mock.NewMockInsightExtractor())

	counting := &countingVectorIndex{VectorIndex: vectors}
	searcher, err := NewSearcher(items, segments, counting, provider)
	require.NoError(t, err)

	return &searchFixture{searcher: searcher, embedder: embedder, vectors: counting}
}

func queryVector(v []float32) func(ctx context.Context, text string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		return v, nil
	}
}

func TestSearchEmptyRequest(t *testing.T) {
	fx := newSearchFixture(t)

	resp, err := fx.searcher.Search(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
	assert.Empty(t, resp.Items)
	assert.Zero(t, fx.embedder.CallCount())
	assert.Zero(t, fx.vectors.queries)
}

func TestSearchSemanticRanking(t *testing.T) {
	fx := newSearchFixture(t)
	fx.embedder.EmbedTextFunc = queryVector([]float32{0.9, 0.1, 0})

	resp, err := fx.searcher.Search(context.Background(), &Request{Query: "go databases", TopK: 2})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 2)

	assert.Equal(t, "ep-go", resp.Hits[0].Item.Id)
	assert.Equal(t, "ep-rust", resp.Hits[1].Item.Id)
	assert.Greater(t, resp.Hits[0].Score, resp.Hits[1].Score)

	// Hits carry the full segment and its parent item
	assert.Equal(t, "segment of ep-go", resp.Hits[0].Segment.Content)
	assert.True(t, resp.Hits[0].Item.ContentComplete())
}

func TestSearchFilterRestrictsVectorSearch(t *testing.T) {
	fx := newSearchFixture(t)
	// Query vector points straight at the cooking episode, but the filter
	// only admits database episodes
	fx.embedder.EmbedTextFunc = queryVector([]float32{0, 0, 1})

	resp, err := fx.searcher.Search(context.Background(), &Request{
		Query:  "knife technique",
		Filter: Filter{Tags: []string{"databases"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)

	for _, hit := range resp.Hits {
		assert.NotEqual(t, "ep-chef", hit.Item.Id, "filtered-out item must not appear")
	}
}

func TestSearchEmptyFilterResolutionShortCircuits(t *testing.T) {
	fx := newSearchFixture(t)

	resp, err := fx.searcher.Search(context.Background(), &Request{
		Query:  "anything",
		Filter: Filter{Tags: []string{"no-such-tag"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)

	// The expensive stages never ran
	assert.Zero(t, fx.embedder.CallCount())
	assert.Zero(t, fx.vectors.queries)
}

func TestSearchBrowseByFilter(t *testing.T) {
	fx := newSearchFixture(t)

	resp, err := fx.searcher.Search(context.Background(), &Request{
		Filter: Filter{Tags: []string{"databases"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Empty(t, resp.Hits)

	// Creation order
	assert.Equal(t, "ep-go", resp.Items[0].Id)
	assert.Equal(t, "ep-rust", resp.Items[1].Id)
	assert.Zero(t, fx.embedder.CallCount())
	assert.Zero(t, fx.vectors.queries)
}

func TestSearchBrowseIgnoresTopK(t *testing.T) {
	// TopK limits ranked hits only; a browse returns every matching item
	fx := newSearchFixture(t)

	resp, err := fx.searcher.Search(context.Background(), &Request{
		Filter: Filter{Tags: []string{"databases"}},
		TopK:   1,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
}

func TestSearchDefaultTopK(t *testing.T) {
	fx := newSearchFixture(t)
	fx.embedder.EmbedTextFunc = queryVector([]float32{1, 1, 1})

	resp, err := fx.searcher.Search(context.Background(), &Request{Query: "everything"})
	require.NoError(t, err)
	// All three segments rank; the default limit is far above that
	assert.Len(t, resp.Hits, 3)
}

// recordingMonitor captures the stage callbacks.
type recordingMonitor struct {
	started      bool
	filterIDs    []string
	filterCalled bool
	embedDim     int
	matches      int
	finished     bool
}

func (m *recordingMonitor) Start(_ *Request) { m.started = true }
func (m *recordingMonitor) AfterFilter(ids []string) {
	m.filterCalled = true
	m.filterIDs = ids
}
func (m *recordingMonitor) AfterEmbedding(vector []float32)               { m.embedDim = len(vector) }
func (m *recordingMonitor) AfterVectorSearch(matches []*core.VectorMatch) { m.matches = len(matches) }
func (m *recordingMonitor) Finish(_ *Response)                            { m.finished = true }

func TestSearchMonitorCallbacks(t *testing.T) {
	fx := newSearchFixture(t)
	fx.embedder.EmbedTextFunc = queryVector([]float32{1, 0, 0})

	monitor := &recordingMonitor{}
	_, err := fx.searcher.SearchWithMonitor(context.Background(), &Request{
		Query:  "go",
		Filter: Filter{Tags: []string{"databases"}},
	}, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.True(t, monitor.filterCalled)
	assert.Equal(t, []string{"ep-go", "ep-rust"}, monitor.filterIDs)
	assert.Equal(t, 3, monitor.embedDim)
	assert.Positive(t, monitor.matches)
	assert.True(t, monitor.finished)
}

func TestNewSearcherValidation(t *testing.T) {
	provider := mock.NewMockProvider()

	items, segments, vectors, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = NewSearcher(nil, segments, vectors, provider)
	assert.ErrorIs(t, err, ErrItemRepositoryRequired)
	_, err = NewSearcher(items, nil, vectors, provider)
	assert.ErrorIs(t, err, ErrSegmentRepositoryRequired)
	_, err = NewSearcher(items, segments, nil, provider)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)
	_, err = NewSearcher(items, segments, vectors, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
