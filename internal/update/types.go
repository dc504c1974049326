package update

import (
	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/version"
)

// Candidate is a newer tag together with its extracted version.
type Candidate struct {
	Tag     string
	Version version.Version
}

// Outcome holds the best compatible and the best breaking update. Either,
// both or neither may be set.
type Outcome struct {
	Compatible *Candidate
	Breaking   *Candidate
}

// HasUpdates reports whether any update was found.
func (o Outcome) HasUpdates() bool {
	return o.Compatible != nil || o.Breaking != nil
}

// CurrentTagStatus tells whether the current tag was seen within the search bound.
type CurrentTagStatus struct {
	Found bool

	// SearchedAmount is the number of tags examined. Only set when Found is false.
	SearchedAmount int
}

// Found is the status of a search that reached the current tag.
func Found() CurrentTagStatus {
	return CurrentTagStatus{Found: true}
}

// NotEncountered is the status of a search that gave up after n tags.
func NotEncountered(n int) CurrentTagStatus {
	return CurrentTagStatus{SearchedAmount: n}
}

// Err returns a CurrentTagNotEncounteredError for a NotEncountered status and
// nil otherwise.
func (s CurrentTagStatus) Err() error {
	if s.Found {
		return nil
	}
	return &CurrentTagNotEncounteredError{SearchedAmount: s.SearchedAmount}
}

// Result is the outcome of resolving one image.
type Result struct {
	Status  CurrentTagStatus
	Outcome Outcome

	// Examined is the number of tags pulled from the source, including the
	// current tag when it was found.
	Examined int
}

// Check is the result of checking one occurrence. Err is set when the check
// failed, in which case Result is zero.
type Check struct {
	Occurrence image.Occurrence
	Result     Result
	Err        error
}

// Image returns the checked image.
func (c Check) Image() image.Image {
	return c.Occurrence.Image
}
