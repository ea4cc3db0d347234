package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

func TestItemBasics(t *testing.T) {
	itemRepo, segmentRepo, vectorIndex, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() {
		vectorIndex.Close()
		segmentRepo.Close()
		itemRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	item := &core.Item{
		Id:         "ep-001",
		Transcript: "Welcome to the show.",
		Insights: core.Insights{
			Summary: "A short welcome.",
			Tags:    []string{"intro"},
		},
		Metadata: map[string]string{"source": "youtube"},
	}

	stored, err := itemRepo.UpsertItem(ctx, item)
	if err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set on insert")
	}

	retrieved, err := itemRepo.GetItem(ctx, "ep-001")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if retrieved.Transcript != "Welcome to the show." {
		t.Fatalf("Expected transcript to roundtrip, got %q", retrieved.Transcript)
	}
	if retrieved.Metadata["source"] != "youtube" {
		t.Fatalf("Expected metadata to roundtrip, got %v", retrieved.Metadata)
	}
}

func TestItemUpsertPreservesCreatedAt(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first, err := itemRepo.UpsertItem(ctx, &core.Item{Id: "ep-002"})
	if err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	createdAt := first.CreatedAt

	time.Sleep(2 * time.Millisecond)

	second, err := itemRepo.UpsertItem(ctx, &core.Item{
		Id:         "ep-002",
		Transcript: "Now with content.",
		Insights:   core.Insights{Summary: "s", Tags: []string{"t"}},
	})
	if err != nil {
		t.Fatalf("Failed to re-upsert item: %v", err)
	}

	if !second.CreatedAt.Equal(createdAt) {
		t.Fatalf("Expected CreatedAt preserved: first %v, second %v", createdAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(createdAt) {
		t.Fatalf("Expected UpdatedAt bumped past %v, got %v", createdAt, second.UpdatedAt)
	}

	retrieved, err := itemRepo.GetItem(ctx, "ep-002")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if retrieved.Transcript != "Now with content." {
		t.Fatal("Expected re-upsert to replace the record")
	}
}

func TestItemNotFound(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = itemRepo.GetItem(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	err = itemRepo.DeleteItem(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestItemBatchGetSkipsMissing(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := itemRepo.UpsertItem(ctx, &core.Item{Id: id}); err != nil {
			t.Fatalf("Failed to upsert item %s: %v", id, err)
		}
	}

	items, err := itemRepo.GetItems(ctx, "a", "missing", "b")
	if err != nil {
		t.Fatalf("Failed to batch get items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
}

func TestListItemsOrderedByCreation(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	ids := []string{"third", "first", "second"}
	for _, id := range ids {
		if _, err := itemRepo.UpsertItem(ctx, &core.Item{Id: id}); err != nil {
			t.Fatalf("Failed to upsert item %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	items, err := itemRepo.ListItems(ctx)
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// Insertion order, not lexicographic order
	for i, id := range ids {
		if items[i].Id != id {
			t.Fatalf("Expected items[%d].Id = %s, got %s", i, id, items[i].Id)
		}
	}
}

func TestItemDelete(t *testing.T) {
	itemRepo, _, _, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { itemRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := itemRepo.UpsertItem(ctx, &core.Item{Id: "gone"}); err != nil {
		t.Fatalf("Failed to upsert item: %v", err)
	}
	if err := itemRepo.DeleteItem(ctx, "gone"); err != nil {
		t.Fatalf("Failed to delete item: %v", err)
	}

	if _, err := itemRepo.GetItem(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	items, err := itemRepo.ListItems(ctx)
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("Expected empty list after delete, got %d items", len(items))
	}
}
