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
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (storage.ItemRepository, error) {
	return &ItemRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ItemRepository) Close() error {
	return nil
}

// UpsertItem inserts the item or updates it in place, keyed by Id.
func (r *ItemRepository) UpsertItem(ctx context.Context, item *core.Item) (*core.Item, error) {
	if item.Id == "" {
		return nil, core.ErrEmptyItemID
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(item.Id)

		old, err := r.readItem(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old == nil {
			item.CreatedAt = now
			item.UpdatedAt = now

			// New item enters the date index
			dateKey := makeItemDateKey(item.CreatedAt, item.Id)
			if err := tx.Set(dateKey, []byte(item.Id)); err != nil {
				return err
			}
		} else {
			// Creation time never changes after the first ingestion, so the
			// date index entry stays valid.
			item.CreatedAt = old.CreatedAt
			item.UpdatedAt = now
		}

		if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return item, err
}

// GetItem retrieves a single item by id.
func (r *ItemRepository) GetItem(ctx context.Context, id string) (*core.Item, error) {
	var result *core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(id)
		var err error
		result, err = r.readItem(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetItems retrieves multiple items by their ids, skipping missing ones.
func (r *ItemRepository) GetItems(ctx context.Context, ids ...string) ([]*core.Item, error) {
	var result []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeItemKey(id)
			item, err := r.readItem(tx, key)
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListItems returns all items ordered by creation time ascending.
func (r *ItemRepository) ListItems(ctx context.Context) ([]*core.Item, error) {
	var results []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemRecordDatePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			// Read the item id from the index value
			var itemID string
			if err := iter.Item().Value(func(val []byte) error {
				itemID = string(val)
				return nil
			}); err != nil {
				return err
			}

			// Look up the full record
			item, err := r.readItem(tx, makeItemKey(itemID))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteItem removes an item and its date index entry.
func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeItemKey(id)

		// Read record to get metadata for index cleanup
		item, err := r.readItem(tx, key)
		if err != nil {
			return err
		}
		if item == nil {
			return storage.ErrNotFound
		}

		dateKey := makeItemDateKey(item.CreatedAt, item.Id)
		if err := tx.Delete(dateKey); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readItem reads and deserializes an item within a transaction.
// Returns nil (no error) when the key is absent.
func (r *ItemRepository) readItem(tx *badger.Txn, key []byte) (*core.Item, error) {
	entry, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var item *core.Item
	err = entry.Value(func(val []byte) error {
		var err error
		item, err = storage.UnmarshalItem(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
