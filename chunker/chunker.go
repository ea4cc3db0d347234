package chunker

import (
	"fmt"
	"unicode"
)

const (
	// DefaultTargetLen is the default target chunk length in characters.
	DefaultTargetLen = 800

	// DefaultOverlap is the default overlap between successive chunks in characters.
	DefaultOverlap = 100
)

// Chunk is one segment of the input text together with its starting rune
// offset in the original input. Offsets make coverage verifiable: successive
// chunks overlap, and the non-overlapping portions cover the whole input.
type Chunk struct {
	Text  string
	Start int // Rune offset of Text within the input
}

// Chunker splits transcript text into overlapping, word-boundary-safe chunks.
// It is a pure function of its inputs: no I/O, fully deterministic.
//
// Lengths are measured in runes, not bytes, so multi-byte input never gets
// cut mid-character.
type Chunker struct {
	targetLen int
	overlap   int
}

// New creates a Chunker with the given target chunk length and overlap,
// both in characters. Overlap must be non-negative and smaller than the
// target length.
func New(targetLen, overlap int) (*Chunker, error) {
	if targetLen <= 0 {
		return nil, fmt.Errorf("%w: target length %d", ErrInvalidTargetLen, targetLen)
	}
	if overlap < 0 || overlap >= targetLen {
		return nil, fmt.Errorf("%w: overlap %d with target length %d", ErrInvalidOverlap, overlap, targetLen)
	}
	return &Chunker{targetLen: targetLen, overlap: overlap}, nil
}

// TargetLen returns the configured target chunk length in characters.
func (c *Chunker) TargetLen() int { return c.targetLen }

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int { return c.overlap }

// Split produces the ordered chunk sequence for text.
//
// Every chunk is at most TargetLen characters. A chunk end that would fall
// inside a word is backed off to the nearest preceding whitespace, so chunk
// ends never split words. Chunk starts may fall mid-word: successive chunks
// overlap by approximately Overlap characters, and the overlap region is not
// re-aligned. The final chunk simply holds the remainder.
//
// Empty input yields zero chunks. Input with no whitespace at all degrades
// to fixed-size slicing; this is the documented exception to the
// word-boundary rule and guarantees termination.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.targetLen {
		return []Chunk{{Text: text, Start: 0}}
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.targetLen
		if end >= len(runes) {
			chunks = append(chunks, Chunk{Text: string(runes[start:]), Start: start})
			return chunks
		}

		cut := end
		// A cut between two word runes would split the word: back off to just
		// after the nearest preceding whitespace.
		if !unicode.IsSpace(runes[end]) && !unicode.IsSpace(runes[end-1]) {
			if ws := lastSpace(runes[start:end]); ws >= 0 {
				cut = start + ws + 1
			}
		}
		// The backed-off cut must still make progress past the overlap
		// region; otherwise fall back to a fixed-size slice.
		if cut-start <= c.overlap {
			cut = end
		}

		chunks = append(chunks, Chunk{Text: string(runes[start:cut]), Start: start})
		start = cut - c.overlap
	}
}

// SplitTexts is a convenience wrapper returning only the chunk texts.
func (c *Chunker) SplitTexts(text string) []string {
	chunks := c.Split(text)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}

// lastSpace returns the index of the last whitespace rune in rs, or -1.
func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsSpace(rs[i]) {
			return i
		}
	}
	return -1
}
