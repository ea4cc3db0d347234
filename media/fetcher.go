package media

import "context"

// Fetcher acquires the audio content for an item from its source platform.
// Implementations must be thread-safe for concurrent use.
type Fetcher interface {
	// Fetch downloads the audio track for the given item id and returns the
	// path of a transient local audio file. The caller owns the file and is
	// responsible for deleting it once consumed.
	// Returns ErrNoAudio (possibly wrapped) when the item has no compatible
	// audio track.
	Fetch(ctx context.Context, itemID string) (string, error)
}
