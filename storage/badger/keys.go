package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/castkeep/castkeep/core"
)

// Key prefixes for different data types
const (
	itemRecordPrefix     = "itmrec"
	itemRecordDatePrefix = "itmrecd"
	segmentRecordPrefix  = "segrec"
	vectorMetaPrefix     = "vecns"
	vectorRecordPrefix   = "vecrec"

	// All segment vectors live in one logical namespace.
	vectorNamespace = "segments"
)

// makeItemKey generates a key for an item record by id.
func makeItemKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", itemRecordPrefix, id))
}

// makeItemDateKey generates a composite key for the creation-date index.
// Format: prefix:timestamp:idHash. Item ids are variable-length strings, so
// the id is folded to a fixed-width hash to keep keys comparable; the real
// id is stored in the key's value.
func makeItemDateKey(createdAt time.Time, id string) []byte {
	prefix := itemRecordDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for id hash
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(id)))
	return buf
}

// makeSegmentKey generates a key for a segment record.
// Format: prefix:itemID:index, with the index in fixed-width BigEndian so a
// prefix scan yields segments in sequence order.
func makeSegmentKey(itemID string, index int) []byte {
	prefix := fmt.Sprintf("%s:%s:", segmentRecordPrefix, itemID)
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeSegmentScanPrefix generates the scan prefix for all segments of an item.
func makeSegmentScanPrefix(itemID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", segmentRecordPrefix, itemID))
}

// makeVectorMetaKey generates the key holding the namespace dimensionality.
func makeVectorMetaKey() []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorMetaPrefix, vectorNamespace))
}

// makeVectorKey generates a key for a vector entry by its segment key.
// Entry keys are variable-length strings, so they are folded to a
// fixed-width hash; the full entry (including its key) is in the value.
func makeVectorKey(entryKey string) []byte {
	prefix := fmt.Sprintf("%s:%s:", vectorRecordPrefix, vectorNamespace)
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(entryKey)))
	return buf
}

// makeVectorScanPrefix generates the scan prefix for all vector entries.
func makeVectorScanPrefix() []byte {
	return []byte(fmt.Sprintf("%s:%s:", vectorRecordPrefix, vectorNamespace))
}
