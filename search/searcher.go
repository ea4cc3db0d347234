package search

import (
	"context"
	"log/slog"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// DefaultTopK is the result limit applied when a request doesn't set one.
const DefaultTopK = 10

// Searcher provides hybrid search over ingested items: a metadata filter
// narrows the candidate set, then vector search ranks segments within it.
type Searcher struct {
	items    storage.ItemRepository
	segments storage.SegmentRepository
	vectors  storage.VectorIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	items storage.ItemRepository,
	segments storage.SegmentRepository,
	vectors storage.VectorIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
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

	s := &Searcher{
		items:    items,
		segments: segments,
		vectors:  vectors,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Request describes one search. Query drives semantic ranking; Filter
// restricts which items may contribute results. Either may be empty.
type Request struct {
	Query  string
	Filter Filter

	// TopK caps the number of ranked hits for query searches; it defaults to
	// DefaultTopK when <= 0. Filter-only browses return every matching item.
	TopK int
}

// Hit is one ranked segment with its parent item.
type Hit struct {
	Segment *core.Segment
	Item    *core.Item
	Score   float32
}

// Response holds search output. A request with a query yields Hits; a
// filter-only request yields Items (a metadata browse); an empty request
// yields neither.
type Response struct {
	Hits  []*Hit
	Items []*core.Item
}

// Search executes the request.
func (s *Searcher) Search(ctx context.Context, req *Request) (*Response, error) {
	return s.SearchWithMonitor(ctx, req, nil)
}

// SearchWithMonitor executes the request with stage callbacks.
//
// With a query, the search runs in two stages: the filter resolves to a set
// of candidate item ids, then vector search ranks segments restricted to
// those items. A filter that matches no items short-circuits to an empty
// response without touching the embedder or the vector index: a restriction
// that matches nothing must never degrade into an unrestricted search.
func (s *Searcher) SearchWithMonitor(ctx context.Context, req *Request, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if req == nil {
		req = &Request{}
	}
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	monitor.Start(req)

	if req.Query == "" && req.Filter.IsZero() {
		resp := &Response{}
		monitor.Finish(resp)
		return resp, nil
	}

	if req.Query == "" {
		return s.browse(ctx, req, monitor)
	}

	// Stage 1: resolve the filter to candidate item ids.
	// nil means unrestricted; an empty non-nil set means no item qualifies.
	var candidateIDs []string
	if !req.Filter.IsZero() {
		ids, err := s.resolveFilter(ctx, &req.Filter)
		if err != nil {
			s.logger.Error("filter resolution failed", "err", err)
			return nil, err
		}
		monitor.AfterFilter(ids)
		if len(ids) == 0 {
			s.logger.Debug("filter matched no items, skipping vector search")
			resp := &Response{}
			monitor.Finish(resp)
			return resp, nil
		}
		candidateIDs = ids
	} else {
		monitor.AfterFilter(nil)
	}

	// Stage 2: semantic ranking inside the candidate set.
	embedding, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		s.logger.Error("query embedding failed", "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(embedding)

	matches, err := s.vectors.QueryVectors(ctx, embedding, topK, candidateIDs)
	if err != nil {
		s.logger.Error("vector search failed", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	hits, err := s.enrich(ctx, matches)
	if err != nil {
		return nil, err
	}

	resp := &Response{Hits: hits}
	monitor.Finish(resp)
	return resp, nil
}

// browse returns every filter-matching item in creation order, without
// ranking. TopK does not apply here; it limits the vector query only.
func (s *Searcher) browse(ctx context.Context, req *Request, monitor SearchMonitor) (*Response, error) {
	ids, err := s.resolveFilter(ctx, &req.Filter)
	if err != nil {
		s.logger.Error("filter resolution failed", "err", err)
		return nil, err
	}
	monitor.AfterFilter(ids)

	items, err := s.items.GetItems(ctx, ids...)
	if err != nil {
		return nil, err
	}

	resp := &Response{Items: items}
	monitor.Finish(resp)
	return resp, nil
}

// resolveFilter scans the item store and returns the ids of matching items
// in creation order.
func (s *Searcher) resolveFilter(ctx context.Context, filter *Filter) ([]string, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if filter.Matches(item) {
			ids = append(ids, item.Id)
		}
	}
	return ids, nil
}

// enrich turns vector matches into hits, attaching segments and their parent
// items. Items are fetched once per response, not once per hit. Matches whose
// segment record has vanished are dropped rather than failing the search.
func (s *Searcher) enrich(ctx context.Context, matches []*core.VectorMatch) ([]*Hit, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	keys := make([]string, len(matches))
	scores := make(map[string]float32, len(matches))
	itemIDSet := make(map[string]bool)
	var itemIDs []string
	for i, match := range matches {
		keys[i] = match.Key
		scores[match.Key] = match.Score
		if !itemIDSet[match.ItemId] {
			itemIDSet[match.ItemId] = true
			itemIDs = append(itemIDs, match.ItemId)
		}
	}

	segments, err := s.segments.GetSegmentsByKeys(ctx, keys...)
	if err != nil {
		s.logger.Error("segment retrieval failed", "err", err)
		return nil, err
	}

	items, err := s.items.GetItems(ctx, itemIDs...)
	if err != nil {
		s.logger.Error("item retrieval failed", "err", err)
		return nil, err
	}
	itemsByID := make(map[string]*core.Item, len(items))
	for _, item := range items {
		itemsByID[item.Id] = item
	}

	hits := make([]*Hit, 0, len(segments))
	for _, segment := range segments {
		item, ok := itemsByID[segment.ItemId]
		if !ok {
			s.logger.Warn("segment without item dropped from results", "segment", segment.Key())
			continue
		}
		hits = append(hits, &Hit{
			Segment: segment,
			Item:    item,
			Score:   scores[segment.Key()],
		})
	}
	return hits, nil
}
