package update

import (
	"context"
	"errors"
	"io"

	"github.com/chis/uptag/internal/registry"
	"github.com/chis/uptag/internal/version"
)

// DefaultSearchLimit is the number of tags examined when no limit is given.
const DefaultSearchLimit = 500

// Resolve searches source for tags newer than currentTag.
//
// Tags are pulled one at a time until the current tag shows up, searchLimit
// tags have been examined or the source is exhausted. Every tag before the
// current one that matches pattern and is newer than the current version is a
// candidate; the highest version of each class wins, regardless of where it
// appeared in the stream.
//
// A source error aborts the search and is returned as a FetchError.
func Resolve(ctx context.Context, pattern *version.Pattern, currentTag string, source registry.TagSource, searchLimit int) (Result, error) {
	current, ok := pattern.ExtractFrom(currentTag)
	if !ok {
		return Result{}, &InvalidCurrentTagError{Tag: currentTag, Pattern: pattern.String()}
	}
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}

	comparator := version.NewComparator(pattern)
	var result Result

	for result.Examined < searchLimit {
		tag, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, &FetchError{Err: err}
		}
		result.Examined++

		if tag == currentTag {
			result.Status = Found()
			return result, nil
		}

		candidate, ok := pattern.ExtractFrom(tag)
		if !ok {
			continue
		}
		updateType, newer := comparator.GetUpdateType(current, candidate)
		if !newer {
			continue
		}

		switch updateType {
		case version.BreakingUpdate:
			result.Outcome.Breaking = keepHighest(result.Outcome.Breaking, tag, candidate)
		case version.CompatibleUpdate:
			result.Outcome.Compatible = keepHighest(result.Outcome.Compatible, tag, candidate)
		}
	}

	result.Status = NotEncountered(result.Examined)
	return result, nil
}

// keepHighest returns the candidate with the higher version. Ties keep the
// earlier, more recent tag.
func keepHighest(best *Candidate, tag string, v version.Version) *Candidate {
	if best != nil && version.Compare(v, best.Version) <= 0 {
		return best
	}
	return &Candidate{Tag: tag, Version: v}
}
