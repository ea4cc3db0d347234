package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain records persisted in the
// storage layer. Timestamps are encoded as microsecond Unix values; vectors
// as raw little-endian float32 for density.

// ItemMUS serializes Item values.
var ItemMUS = itemMUS{}

// SegmentMUS serializes Segment values.
var SegmentMUS = segmentMUS{}

// VectorEntryMUS serializes VectorEntry values.
var VectorEntryMUS = vectorEntryMUS{}

type itemMUS struct{}

func (itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Transcript, bs[n:])
	n += ord.String.Marshal(v.Insights.Summary, bs[n:])
	n += marshalStringSlice(v.Insights.KeyTopics, bs[n:])
	n += marshalStringSlice(v.Insights.Speakers, bs[n:])
	n += marshalStringSlice(v.Insights.ActionItems, bs[n:])
	n += marshalStringSlice(v.Insights.Tags, bs[n:])
	n += varint.PositiveInt.Marshal(v.ChunkCount, bs[n:])
	n += varint.PositiveInt.Marshal(v.ChunkTarget, bs[n:])
	n += varint.PositiveInt.Marshal(v.ChunkOverlap, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	var m int
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Transcript, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Insights.Summary, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Insights.KeyTopics, m, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Insights.Speakers, m, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Insights.ActionItems, m, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Insights.Tags, m, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ChunkCount, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ChunkTarget, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.ChunkOverlap, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Metadata, m, err = unmarshalStringMap(bs[n:]); err != nil {
		return
	}
	n += m
	if v.CreatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	if v.UpdatedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (itemMUS) Size(v Item) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Transcript)
	size += ord.String.Size(v.Insights.Summary)
	size += sizeStringSlice(v.Insights.KeyTopics)
	size += sizeStringSlice(v.Insights.Speakers)
	size += sizeStringSlice(v.Insights.ActionItems)
	size += sizeStringSlice(v.Insights.Tags)
	size += varint.PositiveInt.Size(v.ChunkCount)
	size += varint.PositiveInt.Size(v.ChunkTarget)
	size += varint.PositiveInt.Size(v.ChunkOverlap)
	size += sizeStringMap(v.Metadata)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return
}

type segmentMUS struct{}

func (segmentMUS) Marshal(v Segment, bs []byte) (n int) {
	n = ord.String.Marshal(v.ItemId, bs)
	n += varint.PositiveInt.Marshal(v.Index, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += varint.PositiveInt.Marshal(v.TotalSegments, bs[n:])
	n += marshalStringSlice(v.KeyTopics, bs[n:])
	return
}

func (segmentMUS) Unmarshal(bs []byte) (v Segment, n int, err error) {
	var m int
	if v.ItemId, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Index, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Content, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += m
	if v.TotalSegments, m, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.KeyTopics, m, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (segmentMUS) Size(v Segment) (size int) {
	size = ord.String.Size(v.ItemId)
	size += varint.PositiveInt.Size(v.Index)
	size += ord.String.Size(v.Content)
	size += sizeVector(v.Vector)
	size += varint.PositiveInt.Size(v.TotalSegments)
	size += sizeStringSlice(v.KeyTopics)
	return
}

type vectorEntryMUS struct{}

func (vectorEntryMUS) Marshal(v VectorEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += ord.String.Marshal(v.ItemId, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	return
}

func (vectorEntryMUS) Unmarshal(bs []byte) (v VectorEntry, n int, err error) {
	var m int
	if v.Key, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.ItemId, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if v.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += m
	return
}

func (vectorEntryMUS) Size(v VectorEntry) (size int) {
	size = ord.String.Size(v.Key)
	size += ord.String.Size(v.ItemId)
	size += sizeVector(v.Vector)
	return
}

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return
}

func unmarshalStringSlice(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]string, length)
	var m int
	for i := range v {
		if v[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += m
	}
	return
}

func sizeStringSlice(v []string) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	var m int
	for i := range v {
		if v[i], m, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += m
	}
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func marshalStringMap(v map[string]string, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for key, value := range v {
		n += ord.String.Marshal(key, bs[n:])
		n += ord.String.Marshal(value, bs[n:])
	}
	return
}

func unmarshalStringMap(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make(map[string]string, length)
	var m int
	for i := 0; i < length; i++ {
		var key, value string
		if key, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += m
		if value, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += m
		v[key] = value
	}
	return
}

func sizeStringMap(v map[string]string) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for key, value := range v {
		size += ord.String.Size(key)
		size += ord.String.Size(value)
	}
	return
}

func marshalTime(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}
