package media

import "errors"

var (
	// ErrNoAudio indicates the item has no compatible audio track or the
	// download produced no usable file.
	ErrNoAudio = errors.New("no compatible audio track")
)
