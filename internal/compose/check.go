package compose

import (
	"context"

	"github.com/spf13/afero"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
)

// Checker checks a batch of image occurrences.
type Checker interface {
	CheckAll(ctx context.Context, occurrences []image.Occurrence) []update.Check
}

// Check resolves the images of every service. The occurrences of all services
// are checked as one batch; a service whose images cannot be read gets an
// error result and does not stop the others.
func (f *File) Check(ctx context.Context, fs afero.Fs, checker Checker) []report.Item[string, report.ServiceResult] {
	results := make([]report.Item[string, report.ServiceResult], len(f.Services))
	counts := make([]int, len(f.Services))
	var all []image.Occurrence

	for i, svc := range f.Services {
		results[i].Key = svc.Name

		occurrences, err := svc.Occurrences(fs, f.Path)
		if err != nil {
			logging.WarnContext(ctx, "Service %s: %v", svc.Name, err)
			results[i].Value.Err = err
			continue
		}
		counts[i] = len(occurrences)
		all = append(all, occurrences...)
	}

	checks := checker.CheckAll(ctx, all)

	offset := 0
	for i := range results {
		if results[i].Value.Err != nil {
			continue
		}
		results[i].Value.Checks = checks[offset : offset+counts[i]]
		offset += counts[i]
	}
	return results
}
