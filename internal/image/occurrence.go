package image

// Occurrence is an image found in a Dockerfile or compose manifest together
// with the version pattern annotated next to it.
type Occurrence struct {
	Image Image

	// Pattern is the raw pattern text. Only meaningful when HasPattern is set.
	Pattern    string
	HasPattern bool

	// Source and Line locate the occurrence for diagnostics. Line is 1-based.
	Source string
	Line   int
}
