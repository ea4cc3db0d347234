package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a 64-bit key derived from string identifiers.
// It is used for fixed-width index keys in the storage layer.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Insights holds the structured fields extracted from a transcript by the
// insight-extraction collaborator.
type Insights struct {
	Summary     string
	KeyTopics   []string // Ordered by relevance
	Speakers    []string // May be empty when speakers are unknown
	ActionItems []string // May be empty
	Tags        []string
}

// Item is one unit of ingested media: the full transcript plus the insights
// extracted from it. The Id is externally assigned (a source-platform
// identifier) and stable across re-ingestions.
//
// An Item with a non-empty Transcript always has Insights.Summary and
// Insights.Tags populated: transcript and insights are written as a unit.
type Item struct {
	Id         string
	Transcript string
	Insights   Insights

	// Chunking parameters used when the item was segmented, recorded so the
	// segmentation is reproducible.
	ChunkCount   int
	ChunkTarget  int
	ChunkOverlap int

	Metadata map[string]string // Optional metadata (e.g., "source", "channel")

	CreatedAt time.Time // Set on first ingestion, never changed afterwards
	UpdatedAt time.Time // Bumped on every re-ingestion
}

// ContentComplete reports whether the item has reached the content-complete
// lifecycle state (transcript and extracted insights stored).
func (it *Item) ContentComplete() bool {
	return it.Transcript != ""
}

// Segment is a contiguous, overlap-aware slice of an Item's transcript.
// Its identity is the {ItemId, Index} pair; Key returns the derived string id.
type Segment struct {
	ItemId  string
	Index   int // Zero-based sequence index, contiguous per item
	Content string
	Vector  []float32

	// Denormalized fields for fast read-path enrichment.
	TotalSegments int
	KeyTopics     []string
}

// Key returns the derived string id for the segment.
func (s *Segment) Key() string {
	return SegmentKey(s.ItemId, s.Index)
}

// SegmentKey builds the derived string id for a segment from its composite identity.
func SegmentKey(itemID string, index int) string {
	return fmt.Sprintf("%s:%d", itemID, index)
}

// ParseSegmentKey splits a segment key back into its composite identity.
// Item ids may themselves contain colons, so the index is taken after the
// last colon.
func ParseSegmentKey(key string) (itemID string, index int, err error) {
	sep := strings.LastIndex(key, ":")
	if sep <= 0 || sep == len(key)-1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedSegmentKey, key)
	}
	index, err = strconv.Atoi(key[sep+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedSegmentKey, key)
	}
	return key[:sep], index, nil
}

// VectorEntry is one record stored in the vector index namespace.
type VectorEntry struct {
	Key    string // Segment key ("itemID:index")
	ItemId string
	Vector []float32
}

// VectorMatch is one nearest-neighbor result from the vector index.
type VectorMatch struct {
	Key    string
	ItemId string
	Score  float32
}
