// Package ingestion provides pipeline orchestration for processing media items.
//
// The Pipeline type manages the ingestion workflow for one item, in order:
//   - Looking up existing content to avoid repeating expensive stages
//   - Acquiring the audio track from the source platform
//   - Transcribing the audio (the file is deleted once transcribed)
//   - Extracting structured insights from the transcript
//   - Chunking the transcript and writing segments and their embeddings
//
// The item record itself is written last, so a failed run leaves no partial
// item. Re-running an item is safe: segment writes are insert-if-absent and
// vector writes are upserts.
//
// The Runner type ingests batches of items concurrently over a worker pool.
package ingestion
