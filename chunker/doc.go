// Package chunker splits transcript text into overlapping, word-boundary-safe
// segments for embedding.
//
// Chunking is a pure transformation: the same input and configuration always
// produce the same chunk sequence. Chunk ends are aligned to whitespace so
// words are never split across a chunk end, while chunk starts may fall
// mid-word inside the engineered overlap region. Each chunk carries its rune
// offset in the original text, so callers can verify that the sequence covers
// the input with no gaps.
package chunker
