package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateItem(t *testing.T) {
	t.Run("valid item without transcript", func(t *testing.T) {
		assert.NoError(t, ValidateItem(&Item{Id: "ep-1"}))
	})

	t.Run("valid content-complete item", func(t *testing.T) {
		item := &Item{
			Id:         "ep-1",
			Transcript: "the transcript",
			Insights: Insights{
				Summary: "a summary",
				Tags:    []string{"go", "storage"},
			},
		}
		assert.NoError(t, ValidateItem(item))
	})

	t.Run("nil item", func(t *testing.T) {
		assert.ErrorIs(t, ValidateItem(nil), ErrInvalidItem)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.ErrorIs(t, ValidateItem(&Item{}), ErrEmptyItemID)
	})

	t.Run("transcript without summary", func(t *testing.T) {
		item := &Item{
			Id:         "ep-1",
			Transcript: "the transcript",
			Insights:   Insights{Tags: []string{"go"}},
		}
		assert.ErrorIs(t, ValidateItem(item), ErrIncompleteInsights)
	})

	t.Run("transcript without tags", func(t *testing.T) {
		item := &Item{
			Id:         "ep-1",
			Transcript: "the transcript",
			Insights:   Insights{Summary: "a summary"},
		}
		assert.ErrorIs(t, ValidateItem(item), ErrIncompleteInsights)
	})
}

func TestValidateSegment(t *testing.T) {
	t.Run("valid segment", func(t *testing.T) {
		seg := &Segment{ItemId: "ep-1", Index: 0, Content: "text", TotalSegments: 3}
		assert.NoError(t, ValidateSegment(seg))
	})

	t.Run("nil segment", func(t *testing.T) {
		assert.ErrorIs(t, ValidateSegment(nil), ErrInvalidSegment)
	})

	t.Run("empty item id", func(t *testing.T) {
		seg := &Segment{Index: 0, Content: "text"}
		assert.ErrorIs(t, ValidateSegment(seg), ErrEmptyItemID)
	})

	t.Run("negative index", func(t *testing.T) {
		seg := &Segment{ItemId: "ep-1", Index: -1, Content: "text"}
		assert.ErrorIs(t, ValidateSegment(seg), ErrNegativeIndex)
	})

	t.Run("empty content", func(t *testing.T) {
		seg := &Segment{ItemId: "ep-1", Index: 0}
		assert.ErrorIs(t, ValidateSegment(seg), ErrEmptySegmentContent)
	})

	t.Run("index outside total range", func(t *testing.T) {
		seg := &Segment{ItemId: "ep-1", Index: 3, Content: "text", TotalSegments: 3}
		assert.ErrorIs(t, ValidateSegment(seg), ErrIndexOutOfRange)
	})
}
