package storage

import (
	"context"

	"github.com/castkeep/castkeep/core"
)

// ItemRepository provides operations for the metadata store: one durable
// record per processed item. Implementations must be thread-safe and
// tolerate concurrent upserts keyed by item id.
type ItemRepository interface {
	// UpsertItem inserts the item or updates it in place, keyed by Id.
	// On insert it sets CreatedAt and UpdatedAt; on update it preserves the
	// stored CreatedAt and bumps UpdatedAt. Transcript and insights are
	// written together in one atomic write.
	// Returns the item with timestamps populated.
	UpsertItem(ctx context.Context, item *core.Item) (*core.Item, error)

	// GetItem retrieves a single item by id.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id string) (*core.Item, error)

	// GetItems retrieves multiple items by their ids in one batch.
	// Returns only the items that exist (no error for missing items).
	GetItems(ctx context.Context, ids ...string) ([]*core.Item, error)

	// ListItems returns all items ordered by creation time ascending.
	ListItems(ctx context.Context) ([]*core.Item, error)

	// DeleteItem removes an item by id.
	// Returns ErrNotFound if the item doesn't exist.
	DeleteItem(ctx context.Context, id string) error

	// Close releases repository resources.
	Close() error
}

// SegmentRepository provides operations for the segment store: one record
// per transcript chunk, keyed by {itemId, sequenceIndex}.
type SegmentRepository interface {
	// InsertSegment stores the segment if no record exists for its composite
	// id, and reports whether an insert happened. Re-running an ingestion
	// must not duplicate segments, so an existing record is left untouched.
	InsertSegment(ctx context.Context, segment *core.Segment) (bool, error)

	// UpdateSegments overwrites existing segment records (used when vectors
	// are regenerated). Returns ErrNotFound if any segment doesn't exist.
	UpdateSegments(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error)

	// GetSegments retrieves all segments of an item ordered by sequence index.
	GetSegments(ctx context.Context, itemID string) ([]*core.Segment, error)

	// GetSegmentsByKeys retrieves segments by their derived string ids in one
	// batch. Returns only the segments that exist.
	GetSegmentsByKeys(ctx context.Context, keys ...string) ([]*core.Segment, error)

	// CountSegments returns the number of stored segments for an item.
	CountSegments(ctx context.Context, itemID string) (int, error)

	// DeleteSegments removes all segments of an item.
	DeleteSegments(ctx context.Context, itemID string) error

	// Close releases repository resources.
	Close() error
}

// VectorIndex is the nearest-neighbor index over segment vectors. All
// vectors live in a single logical namespace whose dimensionality is fixed
// when the namespace is created.
type VectorIndex interface {
	// EnsureNamespace creates the index namespace with the given vector
	// dimensionality if it doesn't exist yet. Creating an already-existing
	// namespace with the same dimensionality is a recovered no-op; a
	// different dimensionality returns ErrDimensionMismatch.
	EnsureNamespace(ctx context.Context, dim int) error

	// ResetNamespace drops all vectors and re-creates the namespace with the
	// given dimensionality. Used when the embedding model changes.
	ResetNamespace(ctx context.Context, dim int) error

	// Dimension returns the namespace dimensionality, or 0 when the
	// namespace has not been created yet.
	Dimension(ctx context.Context) (int, error)

	// UpsertVectors inserts or replaces entries keyed by their segment key.
	// Entry vectors must match the namespace dimensionality.
	UpsertVectors(ctx context.Context, entries ...*core.VectorEntry) error

	// DeleteVectors removes all entries belonging to an item. Deleting for
	// an item with no entries is a no-op.
	DeleteVectors(ctx context.Context, itemID string) error

	// QueryVectors returns the topK entries nearest to the query vector,
	// ordered by descending similarity score. A non-nil, non-empty itemIDs
	// slice restricts results to entries belonging to those items. Callers
	// must not pass an empty restriction set to mean "match nothing";
	// nil/empty means unrestricted.
	// An absent namespace yields empty results, not an error.
	QueryVectors(ctx context.Context, vector []float32, topK int, itemIDs []string) ([]*core.VectorMatch, error)

	// Close releases index resources.
	Close() error
}
