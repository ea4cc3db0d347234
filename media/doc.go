// Package media acquires audio content from source platforms.
//
// The Fetcher interface is the boundary the ingestion pipeline delegates to;
// the shipped implementation shells out to yt-dlp and resolves item ids
// through a configurable URL template. Fetched files are transient: the
// consumer deletes them once transcription succeeds.
package media
