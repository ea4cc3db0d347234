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


package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// VectorIndex implements storage.VectorIndex for BadgerDB with a brute-force
// cosine-similarity scan. Segment corpora are small enough (thousands of
// vectors) that a linear scan beats maintaining an ANN structure.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) (storage.VectorIndex, error) {
	return &VectorIndex{backend: backend}, nil
}

// Close releases index resources.
func (v *VectorIndex) Close() error {
	return nil
}

// EnsureNamespace creates the namespace with the given dimensionality if it
// doesn't exist yet. Re-creating with the same dimensionality is a no-op;
// a different dimensionality returns ErrDimensionMismatch.
func (v *VectorIndex) EnsureNamespace(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: dimensionality must be positive, got %d", storage.ErrInvalidQuery, dim)
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := v.readDimension(tx)
		if err != nil {
			return err
		}
		if existing == dim {
			return nil
		}
		if existing != 0 {
			return fmt.Errorf("%w: namespace has dimensionality %d, requested %d",
				storage.ErrDimensionMismatch, existing, dim)
		}

		if err := tx.Set(makeVectorMetaKey(), encodeDimension(dim)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ResetNamespace drops all vectors and re-creates the namespace with the
// given dimensionality.
func (v *VectorIndex) ResetNamespace(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: dimensionality must be positive, got %d", storage.ErrInvalidQuery, dim)
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeVectorScanPrefix()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		var keys [][]byte
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		if err := tx.Set(makeVectorMetaKey(), encodeDimension(dim)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Dimension returns the namespace dimensionality, or 0 when the namespace
// has not been created yet.
func (v *VectorIndex) Dimension(ctx context.Context) (int, error) {
	dim := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = v.readDimension(tx)
		return err
	}, false)
	return dim, err
}

// UpsertVectors inserts or replaces entries keyed by their segment key.
func (v *VectorIndex) UpsertVectors(ctx context.Context, entries ...*core.VectorEntry) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := v.readDimension(tx)
		if err != nil {
			return err
		}
		if dim == 0 {
			return fmt.Errorf("%w: vector namespace not created", storage.ErrNotFound)
		}

		for _, entry := range entries {
			if len(entry.Vector) != dim {
				return fmt.Errorf("%w: entry %q has %d dimensions, namespace has %d",
					storage.ErrDimensionMismatch, entry.Key, len(entry.Vector), dim)
			}
			if err := tx.Set(makeVectorKey(entry.Key), storage.MarshalVectorEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteVectors removes all entries belonging to an item. Entry keys are
// hashed, so membership is decided by decoding each entry's ItemId.
func (v *VectorIndex) DeleteVectors(ctx context.Context, itemID string) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorScanPrefix()

		var keys [][]byte
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.VectorEntry
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			if entry.ItemId == itemID {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// QueryVectors returns the topK entries nearest to the query vector, ordered
// by descending cosine similarity. A non-empty itemIDs slice restricts
// results to those items. An absent namespace yields empty results.
func (v *VectorIndex) QueryVectors(ctx context.Context, vector []float32, topK int, itemIDs []string) ([]*core.VectorMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK)
	}

	var allowed map[string]bool
	if len(itemIDs) > 0 {
		allowed = make(map[string]bool, len(itemIDs))
		for _, id := range itemIDs {
			allowed[id] = true
		}
	}

	var results []*core.VectorMatch
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := v.readDimension(tx)
		if err != nil {
			return err
		}
		if dim == 0 {
			return nil
		}
		if len(vector) != dim {
			return fmt.Errorf("%w: query vector has %d dimensions, namespace has %d",
				storage.ErrDimensionMismatch, len(vector), dim)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.VectorEntry
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			}); err != nil {
				return err
			}

			if allowed != nil && !allowed[entry.ItemId] {
				continue
			}

			results = append(results, &core.VectorMatch{
				Key:    entry.Key,
				ItemId: entry.ItemId,
				Score:  cosineSimilarity(vector, entry.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.VectorMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// readDimension reads the namespace dimensionality within a transaction.
// Returns 0 (no error) when the namespace is absent.
func (v *VectorIndex) readDimension(tx *badger.Txn) (int, error) {
	entry, err := tx.Get(makeVectorMetaKey())
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	dim := 0
	err = entry.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: malformed namespace metadata", storage.ErrSerializationFailed)
		}
		dim = int(binary.BigEndian.Uint64(val))
		return nil
	})
	return dim, err
}

func encodeDimension(dim int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(dim))
	return buf
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
