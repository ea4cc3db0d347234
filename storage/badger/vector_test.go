package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

func seedVectors(t *testing.T, index storage.VectorIndex) {
	t.Helper()
	ctx := context.Background()

	if err := index.EnsureNamespace(ctx, 3); err != nil {
		t.Fatalf("Failed to ensure namespace: %v", err)
	}

	entries := []*core.VectorEntry{
		{Key: core.SegmentKey("ep-a", 0), ItemId: "ep-a", Vector: []float32{1, 0, 0}},
		{Key: core.SegmentKey("ep-a", 1), ItemId: "ep-a", Vector: []float32{0.9, 0.1, 0}},
		{Key: core.SegmentKey("ep-b", 0), ItemId: "ep-b", Vector: []float32{0, 1, 0}},
		{Key: core.SegmentKey("ep-c", 0), ItemId: "ep-c", Vector: []float32{0, 0, 1}},
	}
	if err := index.UpsertVectors(ctx, entries...); err != nil {
		t.Fatalf("Failed to upsert vectors: %v", err)
	}
}

func TestVectorNamespaceLifecycle(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	ctx := context.Background()

	dim, err := index.Dimension(ctx)
	if err != nil {
		t.Fatalf("Failed to read dimension: %v", err)
	}
	if dim != 0 {
		t.Fatalf("Expected 0 dimension before creation, got %d", dim)
	}

	if err := index.EnsureNamespace(ctx, 384); err != nil {
		t.Fatalf("Failed to ensure namespace: %v", err)
	}

	// Same dimensionality is a no-op
	if err := index.EnsureNamespace(ctx, 384); err != nil {
		t.Fatalf("Expected same-dimension ensure to be a no-op, got %v", err)
	}

	// Different dimensionality conflicts
	err = index.EnsureNamespace(ctx, 768)
	if !errors.Is(err, storage.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}

	dim, err = index.Dimension(ctx)
	if err != nil {
		t.Fatalf("Failed to read dimension: %v", err)
	}
	if dim != 384 {
		t.Fatalf("Expected 384, got %d", dim)
	}
}

func TestVectorQueryRanksBySimilarity(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	seedVectors(t, index)
	ctx := context.Background()

	matches, err := index.QueryVectors(ctx, []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Failed to query vectors: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Key != core.SegmentKey("ep-a", 0) {
		t.Fatalf("Expected exact match first, got %s", matches[0].Key)
	}
	if matches[1].Key != core.SegmentKey("ep-a", 1) {
		t.Fatalf("Expected near match second, got %s", matches[1].Key)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Expected scores in descending order")
	}
}

func TestVectorQueryRestrictedByItems(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	seedVectors(t, index)
	ctx := context.Background()

	matches, err := index.QueryVectors(ctx, []float32{1, 0, 0}, 10, []string{"ep-b", "ep-c"})
	if err != nil {
		t.Fatalf("Failed to query vectors: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, match := range matches {
		if match.ItemId == "ep-a" {
			t.Fatal("Expected restriction to exclude ep-a")
		}
	}
}

func TestVectorQueryAbsentNamespace(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	matches, err := index.QueryVectors(context.Background(), []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Expected absent namespace to yield empty results, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("Expected 0 matches, got %d", len(matches))
	}
}

func TestVectorUpsertValidation(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	ctx := context.Background()

	// Namespace must exist
	err = index.UpsertVectors(ctx, &core.VectorEntry{Key: "x:0", ItemId: "x", Vector: []float32{1, 2, 3}})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound without namespace, got %v", err)
	}

	if err := index.EnsureNamespace(ctx, 3); err != nil {
		t.Fatalf("Failed to ensure namespace: %v", err)
	}

	// Entries must match the namespace dimensionality
	err = index.UpsertVectors(ctx, &core.VectorEntry{Key: "x:0", ItemId: "x", Vector: []float32{1, 2}})
	if !errors.Is(err, storage.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}

	// So must query vectors
	if err := index.UpsertVectors(ctx, &core.VectorEntry{Key: "x:0", ItemId: "x", Vector: []float32{1, 2, 3}}); err != nil {
		t.Fatalf("Failed to upsert vector: %v", err)
	}
	_, err = index.QueryVectors(ctx, []float32{1, 2}, 10, nil)
	if !errors.Is(err, storage.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestVectorUpsertReplacesByKey(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	ctx := context.Background()

	if err := index.EnsureNamespace(ctx, 3); err != nil {
		t.Fatalf("Failed to ensure namespace: %v", err)
	}

	entry := &core.VectorEntry{Key: "x:0", ItemId: "x", Vector: []float32{1, 0, 0}}
	if err := index.UpsertVectors(ctx, entry); err != nil {
		t.Fatalf("Failed to upsert vector: %v", err)
	}
	entry.Vector = []float32{0, 1, 0}
	if err := index.UpsertVectors(ctx, entry); err != nil {
		t.Fatalf("Failed to re-upsert vector: %v", err)
	}

	matches, err := index.QueryVectors(ctx, []float32{0, 1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Failed to query vectors: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match after replace, got %d", len(matches))
	}
	if matches[0].Score < 0.99 {
		t.Fatalf("Expected replaced vector to match the new direction, score %f", matches[0].Score)
	}
}

func TestVectorDeleteByItem(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	seedVectors(t, index)
	ctx := context.Background()

	if err := index.DeleteVectors(ctx, "ep-a"); err != nil {
		t.Fatalf("Failed to delete vectors: %v", err)
	}

	matches, err := index.QueryVectors(ctx, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Failed to query vectors: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches after delete, got %d", len(matches))
	}
	for _, match := range matches {
		if match.ItemId == "ep-a" {
			t.Fatal("Expected ep-a entries to be gone")
		}
	}

	// Deleting an item with no entries is a no-op
	if err := index.DeleteVectors(ctx, "ep-a"); err != nil {
		t.Fatalf("Expected repeat delete to be a no-op, got %v", err)
	}
}

func TestVectorReset(t *testing.T) {
	_, _, index, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { index.Close(); backend.Close() }()

	seedVectors(t, index)
	ctx := context.Background()

	// Reset moves to a new dimensionality and drops every entry
	if err := index.ResetNamespace(ctx, 5); err != nil {
		t.Fatalf("Failed to reset namespace: %v", err)
	}

	dim, err := index.Dimension(ctx)
	if err != nil {
		t.Fatalf("Failed to read dimension: %v", err)
	}
	if dim != 5 {
		t.Fatalf("Expected 5 after reset, got %d", dim)
	}

	matches, err := index.QueryVectors(ctx, []float32{1, 0, 0, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Failed to query vectors: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("Expected empty index after reset, got %d matches", len(matches))
	}
}
