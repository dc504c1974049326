package report

import (
	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/update"
)

// ServiceResult is what checking one compose service produced: either the
// checks of its images or an error that prevented checking them at all.
type ServiceResult struct {
	Checks []update.Check
	Err    error
}

// ServiceFailure is a failed service. Either Err is set, for a service that
// could not be checked, or Images lists its failed images.
type ServiceFailure struct {
	Err    error
	Images []Item[image.Image, error]
}

// ComposeReport is the report for a compose manifest, keyed by service name.
type ComposeReport = Report[
	string,
	[]Item[image.Image, struct{}],
	[]Item[image.Image, update.Candidate],
	ServiceFailure,
]

// ForServices builds the report for a compose manifest. Each service's checks
// are folded into an image report first; that report is then spread over the
// service-level buckets.
func ForServices(services []Item[string, ServiceResult]) ComposeReport {
	return Fold(services, placeService)
}

func placeService(s ServiceResult) Placement[[]Item[image.Image, struct{}], []Item[image.Image, update.Candidate], ServiceFailure] {
	var p Placement[[]Item[image.Image, struct{}], []Item[image.Image, update.Candidate], ServiceFailure]

	if s.Err != nil {
		p.Failure = &ServiceFailure{Err: s.Err}
		return p
	}

	inner := ForImages(s.Checks)
	// a service without checkable images has nothing to update
	if len(inner.NoUpdates) > 0 || inner.Empty() {
		p.NoUpdate = &inner.NoUpdates
	}
	if len(inner.CompatibleUpdates) > 0 {
		p.Compatible = &inner.CompatibleUpdates
	}
	if len(inner.BreakingUpdates) > 0 {
		p.Breaking = &inner.BreakingUpdates
	}
	if len(inner.Failures) > 0 {
		p.Failure = &ServiceFailure{Images: inner.Failures}
	}
	return p
}
