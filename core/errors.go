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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidSegment indicates a Segment failed validation.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrEmptyItemID indicates the item Id field is empty.
	ErrEmptyItemID = errors.New("item id cannot be empty")

	// ErrIncompleteInsights indicates a transcript was stored without its
	// summary and tags. Transcript and insights are written as a unit.
	ErrIncompleteInsights = errors.New("transcript requires summary and tags")

	// ErrNegativeIndex indicates a segment sequence index below zero.
	ErrNegativeIndex = errors.New("segment index cannot be negative")

	// ErrEmptySegmentContent indicates the segment Content field is empty.
	ErrEmptySegmentContent = errors.New("segment content cannot be empty")

	// ErrIndexOutOfRange indicates a segment index >= its TotalSegments.
	ErrIndexOutOfRange = errors.New("segment index outside total range")

	// ErrMalformedSegmentKey indicates a segment key that cannot be parsed
	// back into an item id and sequence index.
	ErrMalformedSegmentKey = errors.New("malformed segment key")
)
