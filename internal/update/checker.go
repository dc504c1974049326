package update

import (
	"context"
	"sync"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/registry"
	"github.com/chis/uptag/internal/version"
)

// DefaultMaxConcurrency is the number of images resolved at the same time.
const DefaultMaxConcurrency = 5

// Observer is notified of every finished check.
type Observer interface {
	ObserveCheck(c Check)
}

// Checker checks image occurrences for newer tags.
type Checker struct {
	sources        registry.SourceProvider
	searchLimit    int
	maxConcurrency int
	observer       Observer
}

// NewChecker creates a new update checker pulling tags from sources.
func NewChecker(sources registry.SourceProvider) *Checker {
	return &Checker{
		sources:        sources,
		searchLimit:    DefaultSearchLimit,
		maxConcurrency: DefaultMaxConcurrency,
	}
}

// SetSearchLimit sets the number of tags examined per image.
func (c *Checker) SetSearchLimit(limit int) {
	if limit > 0 {
		c.searchLimit = limit
	}
}

// SetMaxConcurrency sets the maximum number of concurrent registry queries.
func (c *Checker) SetMaxConcurrency(max int) {
	if max > 0 {
		c.maxConcurrency = max
	}
}

// SetObserver registers an observer for finished checks.
func (c *Checker) SetObserver(o Observer) {
	c.observer = o
}

// Check checks a single occurrence.
func (c *Checker) Check(ctx context.Context, occ image.Occurrence) Check {
	check := Check{Occurrence: occ}
	check.Result, check.Err = c.resolve(ctx, occ)
	c.finish(ctx, check)
	return check
}

func (c *Checker) finish(ctx context.Context, check Check) {
	c.log(ctx, check)
	if c.observer != nil {
		c.observer.ObserveCheck(check)
	}
}

func (c *Checker) resolve(ctx context.Context, occ image.Occurrence) (Result, error) {
	if !occ.HasPattern {
		return Result{}, &UnspecifiedPatternError{Image: occ.Image}
	}

	pattern, err := version.ParsePattern(occ.Pattern)
	if err != nil {
		return Result{}, &InvalidPatternError{Pattern: occ.Pattern, Err: err}
	}

	return Resolve(ctx, pattern, occ.Image.Tag, c.sources.Tags(occ.Image), c.searchLimit)
}

// CheckAll checks every occurrence, at most maxConcurrency at a time. The
// returned slice is in input order. Once ctx is done no further checks are
// started; the remaining occurrences fail with the context error.
func (c *Checker) CheckAll(ctx context.Context, occurrences []image.Occurrence) []Check {
	results := make([]Check, len(occurrences))

	sem := make(chan struct{}, c.maxConcurrency)
	var wg sync.WaitGroup

	for i, occ := range occurrences {
		wg.Add(1)
		go func(idx int, occ image.Occurrence) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[idx] = Check{Occurrence: occ, Err: err}
				c.finish(ctx, results[idx])
				return
			}

			results[idx] = c.Check(ctx, occ)
		}(i, occ)
	}

	wg.Wait()
	return results
}

func (c *Checker) log(ctx context.Context, check Check) {
	logger := logging.Default().WithFields(map[string]interface{}{
		"image":    check.Image().String(),
		"examined": check.Result.Examined,
	})

	switch {
	case check.Err != nil:
		logger.WithError(check.Err).WarnContext(ctx, "Check failed")
	case !check.Result.Status.Found:
		logger.WarnContext(ctx, "Current tag not encountered within %d tags", check.Result.Status.SearchedAmount)
	default:
		outcome := check.Result.Outcome
		if outcome.Breaking != nil {
			logger.DebugContext(ctx, "Breaking update to %s", outcome.Breaking.Tag)
		}
		if outcome.Compatible != nil {
			logger.DebugContext(ctx, "Compatible update to %s", outcome.Compatible.Tag)
		}
		if !outcome.HasUpdates() {
			logger.DebugContext(ctx, "Up to date")
		}
	}
}
