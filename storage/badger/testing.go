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

import "github.com/castkeep/castkeep/storage"

// NewMemoryStores creates in-memory item, segment, and vector stores for
// testing. Returns itemRepo, segmentRepo, vectorIndex, backend, and error.
// Caller must close the repos and backend when done.
func NewMemoryStores() (storage.ItemRepository, storage.SegmentRepository, storage.VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	itemRepo, err := NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	segmentRepo, err := NewSegmentRepository(backend)
	if err != nil {
		itemRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	vectorIndex, err := NewVectorIndex(backend)
	if err != nil {
		segmentRepo.Close()
		itemRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return itemRepo, segmentRepo, vectorIndex, backend, nil
}
