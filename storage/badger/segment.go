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

	"github.com/dgraph-io/badger/v4"

	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// SegmentRepository implements storage.SegmentRepository for BadgerDB.
type SegmentRepository struct {
	backend *Backend
}

var _ storage.SegmentRepository = (*SegmentRepository)(nil)

// NewSegmentRepository creates a new SegmentRepository.
func NewSegmentRepository(backend *Backend) (storage.SegmentRepository, error) {
	return &SegmentRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *SegmentRepository) Close() error {
	return nil
}

// InsertSegment stores the segment if no record exists for its composite id.
// An existing record is left untouched; the return value reports whether an
// insert happened.
func (r *SegmentRepository) InsertSegment(ctx context.Context, segment *core.Segment) (bool, error) {
	if err := core.ValidateSegment(segment); err != nil {
		return false, err
	}

	inserted := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSegmentKey(segment.ItemId, segment.Index)

		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
			return err
		}
		inserted = true
		return tx.Commit()
	}, true)

	return inserted, err
}

// UpdateSegments overwrites existing segment records.
func (r *SegmentRepository) UpdateSegments(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, segment := range segments {
			key := makeSegmentKey(segment.ItemId, segment.Index)

			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return storage.ErrNotFound
				}
				return err
			}

			if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return segments, err
}

// GetSegments retrieves all segments of an item ordered by sequence index.
func (r *SegmentRepository) GetSegments(ctx context.Context, itemID string) ([]*core.Segment, error) {
	var results []*core.Segment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSegmentScanPrefix(itemID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Segment keys end in a fixed-width BigEndian index, so the scan
		// yields segments in sequence order.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			// An item id that is itself a prefix of another item id would
			// leak that item's segments into the scan; the exact key length
			// rules those out.
			if len(iter.Item().Key()) != len(prefix)+8 {
				continue
			}

			var segment *core.Segment
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				segment, err = storage.UnmarshalSegment(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, segment)
		}
		return nil
	}, false)
	return results, err
}

// GetSegmentsByKeys retrieves segments by their derived string ids, skipping
// missing ones.
func (r *SegmentRepository) GetSegmentsByKeys(ctx context.Context, keys ...string) ([]*core.Segment, error) {
	var results []*core.Segment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, segKey := range keys {
			itemID, index, err := core.ParseSegmentKey(segKey)
			if err != nil {
				return err
			}

			entry, err := tx.Get(makeSegmentKey(itemID, index))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}

			var segment *core.Segment
			if err := entry.Value(func(val []byte) error {
				var err error
				segment, err = storage.UnmarshalSegment(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, segment)
		}
		return nil
	}, false)
	return results, err
}

// CountSegments returns the number of stored segments for an item.
func (r *SegmentRepository) CountSegments(ctx context.Context, itemID string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSegmentScanPrefix(itemID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if len(iter.Item().Key()) != len(prefix)+8 {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteSegments removes all segments of an item.
func (r *SegmentRepository) DeleteSegments(ctx context.Context, itemID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSegmentScanPrefix(itemID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		// Collect keys first; deleting while iterating invalidates the
		// iterator.
		var keys [][]byte
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if len(iter.Item().Key()) != len(prefix)+8 {
				continue
			}
			keys = append(keys, iter.Item().KeyCopy(nil))
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
