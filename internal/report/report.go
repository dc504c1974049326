// Package report folds check results into buckets by update severity.
//
// The same generic Fold builds the report for a list of images and, a level
// up, the report for a list of compose services whose values are themselves
// image reports.
package report

// Item is a keyed entry of a report bucket.
type Item[K, V any] struct {
	Key   K
	Value V
}

// Report groups entries into four buckets. Every bucket keeps the order in
// which entries were first seen. An entry may be in several buckets.
type Report[K, N, U, F any] struct {
	NoUpdates         []Item[K, N]
	CompatibleUpdates []Item[K, U]
	BreakingUpdates   []Item[K, U]
	Failures          []Item[K, F]
}

// Placement tells Fold which buckets a value goes into. Nil fields are skipped.
type Placement[N, U, F any] struct {
	NoUpdate   *N
	Compatible *U
	Breaking   *U
	Failure    *F
}

// Fold places every item into the buckets chosen by place.
func Fold[K, R, N, U, F any](items []Item[K, R], place func(R) Placement[N, U, F]) Report[K, N, U, F] {
	var r Report[K, N, U, F]
	for _, item := range items {
		p := place(item.Value)
		if p.NoUpdate != nil {
			r.NoUpdates = append(r.NoUpdates, Item[K, N]{Key: item.Key, Value: *p.NoUpdate})
		}
		if p.Compatible != nil {
			r.CompatibleUpdates = append(r.CompatibleUpdates, Item[K, U]{Key: item.Key, Value: *p.Compatible})
		}
		if p.Breaking != nil {
			r.BreakingUpdates = append(r.BreakingUpdates, Item[K, U]{Key: item.Key, Value: *p.Breaking})
		}
		if p.Failure != nil {
			r.Failures = append(r.Failures, Item[K, F]{Key: item.Key, Value: *p.Failure})
		}
	}
	return r
}

// Level returns the most severe outcome in the report.
func (r Report[K, N, U, F]) Level() Level {
	switch {
	case len(r.Failures) > 0:
		return Failure
	case len(r.BreakingUpdates) > 0:
		return BreakingUpdate
	case len(r.CompatibleUpdates) > 0:
		return CompatibleUpdate
	default:
		return NoUpdates
	}
}

// Empty reports whether every bucket is empty.
func (r Report[K, N, U, F]) Empty() bool {
	return len(r.NoUpdates)+len(r.CompatibleUpdates)+len(r.BreakingUpdates)+len(r.Failures) == 0
}
