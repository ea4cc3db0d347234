package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemMUSRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 589000, time.UTC)
	item := Item{
		Id:         "ep-42",
		Transcript: "today we talk about embedded key-value stores",
		Insights: Insights{
			Summary:     "A discussion of embedded KV stores.",
			KeyTopics:   []string{"badger", "lsm trees"},
			Speakers:    []string{"Alice", "Bob"},
			ActionItems: []string{"benchmark compaction"},
			Tags:        []string{"databases", "go"},
		},
		ChunkCount:   3,
		ChunkTarget:  800,
		ChunkOverlap: 100,
		Metadata:     map[string]string{"source": "youtube"},
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
	}

	bs := make([]byte, ItemMUS.Size(item))
	n := ItemMUS.Marshal(item, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := ItemMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, item, decoded)
}

func TestSegmentMUSRoundTrip(t *testing.T) {
	seg := Segment{
		ItemId:        "ep-42",
		Index:         1,
		Content:       "embedded key-value stores trade flexibility for",
		Vector:        []float32{0.25, -0.5, 0.125},
		TotalSegments: 3,
		KeyTopics:     []string{"badger"},
	}

	bs := make([]byte, SegmentMUS.Size(seg))
	SegmentMUS.Marshal(seg, bs)

	decoded, _, err := SegmentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, seg, decoded)
}

func TestVectorEntryMUSRoundTrip(t *testing.T) {
	entry := VectorEntry{
		Key:    "ep-42:1",
		ItemId: "ep-42",
		Vector: []float32{1, 0, -1},
	}

	bs := make([]byte, VectorEntryMUS.Size(entry))
	VectorEntryMUS.Marshal(entry, bs)

	decoded, _, err := VectorEntryMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestItemMUSEmptyCollections(t *testing.T) {
	item := Item{Id: "ep-1", CreatedAt: time.Unix(0, 0).UTC(), UpdatedAt: time.Unix(0, 0).UTC()}

	bs := make([]byte, ItemMUS.Size(item))
	ItemMUS.Marshal(item, bs)

	decoded, _, err := ItemMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, item, decoded)
}
