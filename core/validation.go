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

import "fmt"

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - A non-empty Transcript requires Insights.Summary and Insights.Tags
//     (transcript and insights are persisted atomically as a unit)
//
// NOT validated:
//   - ChunkCount (0 is valid before segmentation)
//   - Timestamps (populated by the repository on write)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyItemID)
	}

	if item.Transcript != "" && (item.Insights.Summary == "" || len(item.Insights.Tags) == 0) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrIncompleteInsights)
	}

	return nil
}

// ValidateSegment validates a Segment according to domain rules.
//
// Validation rules:
//   - ItemId must not be empty
//   - Index must be >= 0 and < TotalSegments
//   - Content must not be empty
//
// NOT validated (populated during embedding):
//   - Vector (can be empty until embedded)
func ValidateSegment(segment *Segment) error {
	if segment == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}

	if segment.ItemId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyItemID)
	}

	if segment.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrNegativeIndex)
	}

	if segment.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptySegmentContent)
	}

	if segment.TotalSegments > 0 && segment.Index >= segment.TotalSegments {
		return fmt.Errorf("%w: %w: index %d of %d", ErrInvalidSegment, ErrIndexOutOfRange, segment.Index, segment.TotalSegments)
	}

	return nil
}
