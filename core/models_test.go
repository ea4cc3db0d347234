package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("episode-42:0")
		id2 := IDFromContent("episode-42:0")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		id1 := IDFromContent("episode-42:0")
		id2 := IDFromContent("episode-42:1")
		assert.NotEqual(t, id1, id2)
	})
}

func TestSegmentKey(t *testing.T) {
	seg := &Segment{ItemId: "abc123", Index: 7}
	assert.Equal(t, "abc123:7", seg.Key())

	itemID, index, err := ParseSegmentKey(seg.Key())
	require.NoError(t, err)
	assert.Equal(t, "abc123", itemID)
	assert.Equal(t, 7, index)
}

func TestParseSegmentKey_ItemIDWithColons(t *testing.T) {
	itemID, index, err := ParseSegmentKey("yt:video:xyz:12")
	require.NoError(t, err)
	assert.Equal(t, "yt:video:xyz", itemID)
	assert.Equal(t, 12, index)
}

func TestParseSegmentKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "nocolon", ":5", "abc:", "abc:notanumber", "abc:-1"} {
		_, _, err := ParseSegmentKey(key)
		assert.ErrorIs(t, err, ErrMalformedSegmentKey, "key %q", key)
	}
}

func TestItemContentComplete(t *testing.T) {
	item := &Item{Id: "ep-1"}
	assert.False(t, item.ContentComplete())

	item.Transcript = "full transcript text"
	assert.True(t, item.ContentComplete())
}
