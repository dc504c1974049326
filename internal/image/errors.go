package image

import "errors"

// Sentinel errors returned by Parse.
var (
	ErrEmptyReference = errors.New("empty image reference")
	ErrMissingTag     = errors.New("image reference has no tag")
	ErrDigestPinned   = errors.New("image reference is pinned by digest")
)
