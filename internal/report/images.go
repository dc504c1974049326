package report

import (
	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/update"
)

// ImageReport is the report for the images of one Dockerfile or service.
// Failures carry the error of the check; a current tag that was not found
// within the search bound is reported as a failure next to any updates.
type ImageReport = Report[image.Image, struct{}, update.Candidate, error]

// ImageItems keys checks by their image.
func ImageItems(checks []update.Check) []Item[image.Image, update.Check] {
	items := make([]Item[image.Image, update.Check], len(checks))
	for i, c := range checks {
		items[i] = Item[image.Image, update.Check]{Key: c.Image(), Value: c}
	}
	return items
}

// ForImages builds the report for a list of checks.
func ForImages(checks []update.Check) ImageReport {
	return Fold(ImageItems(checks), PlaceCheck)
}

// PlaceCheck decides the buckets of a single check.
func PlaceCheck(c update.Check) Placement[struct{}, update.Candidate, error] {
	var p Placement[struct{}, update.Candidate, error]

	if c.Err != nil {
		err := c.Err
		p.Failure = &err
		return p
	}

	outcome := c.Result.Outcome
	p.Compatible = outcome.Compatible
	p.Breaking = outcome.Breaking

	if err := c.Result.Status.Err(); err != nil {
		p.Failure = &err
	} else if !outcome.HasUpdates() {
		p.NoUpdate = &struct{}{}
	}
	return p
}
