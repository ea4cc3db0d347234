// Package reindex provides functionality for re-embedding stored segments
// with a new or updated embedding model.
//
// This package supports batch processing of segments, progress tracking,
// retry logic with exponential backoff, and vector normalization. The vector
// index namespace is rebuilt at the new model's dimensionality as part of
// the run.
package reindex
