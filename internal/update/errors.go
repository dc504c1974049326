package update

import (
	"errors"
	"fmt"

	"github.com/chis/uptag/internal/image"
)

// ErrNoPattern is wrapped by UnspecifiedPatternError.
var ErrNoPattern = errors.New("failed to find version pattern")

// UnspecifiedPatternError is returned for an image without a pattern annotation.
type UnspecifiedPatternError struct {
	Image image.Image
}

func (e *UnspecifiedPatternError) Error() string { return ErrNoPattern.Error() }
func (e *UnspecifiedPatternError) Unwrap() error { return ErrNoPattern }

// InvalidPatternError wraps the syntax error of an annotated pattern.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("the version pattern %q is invalid: %v", e.Pattern, e.Err)
}
func (e *InvalidPatternError) Unwrap() error { return e.Err }

// InvalidCurrentTagError is returned when the current tag does not match its pattern.
type InvalidCurrentTagError struct {
	Tag     string
	Pattern string
}

func (e *InvalidCurrentTagError) Error() string {
	return fmt.Sprintf("the current tag %q does not match the required pattern %q", e.Tag, e.Pattern)
}

// FetchError wraps a failure of the tag source.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("failed to fetch tags: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// CurrentTagNotEncounteredError reports that the search bound was exhausted
// before the current tag showed up. Updates found within the bound are still
// valid, so this is reported next to them rather than instead of them.
type CurrentTagNotEncounteredError struct {
	SearchedAmount int
}

func (e *CurrentTagNotEncounteredError) Error() string {
	return fmt.Sprintf("current tag not encountered within the first %d tags", e.SearchedAmount)
}
