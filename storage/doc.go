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


// Package storage provides the storage abstraction layer for castkeep.
//
// This package defines the three logical stores the rest of the system
// depends on, decoupled from any concrete database:
//
//   - ItemRepository: the metadata store (one record per processed item)
//   - SegmentRepository: the segment store (one record per transcript chunk)
//   - VectorIndex: the nearest-neighbor index over segment vectors
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple storage backend
// implementations:
//
//	items, err := badger.NewItemRepository(backend) // returns storage.ItemRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Consistency Model
//
// The item record, its segment records, and its vector-index entries are not
// written in one distributed transaction. All writes are idempotent upserts
// keyed by item/segment id, so a retried ingestion converges instead of
// duplicating data.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access from
// multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout support.
// Pass context.Background() for operations without specific timeout
// requirements.
package storage
