package version

// Comparator compares versions extracted with a single pattern.
type Comparator struct {
	breakingDegree int
}

// NewComparator creates a comparator for versions produced by the given pattern.
func NewComparator(p *Pattern) *Comparator {
	return &Comparator{breakingDegree: p.BreakingDegree()}
}

// Compare compares two versions and returns:
//
//	-1 if v1 < v2
//	 0 if v1 == v2
//	 1 if v1 > v2
//
// Ordering is lexicographic over the components. Versions of different arity
// only occur when mixing patterns; the shorter one sorts first when it is a
// prefix of the longer one.
func Compare(v1, v2 Version) int {
	n := min(len(v1.parts), len(v2.parts))
	for i := 0; i < n; i++ {
		if v1.parts[i] != v2.parts[i] {
			if v1.parts[i] < v2.parts[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(v1.parts) < len(v2.parts):
		return -1
	case len(v1.parts) > len(v2.parts):
		return 1
	default:
		return 0
	}
}

// SamenessDegree counts the leading components on which a and b agree.
func SamenessDegree(a, b Version) int {
	n := min(len(a.parts), len(b.parts))
	degree := 0
	for degree < n && a.parts[degree] == b.parts[degree] {
		degree++
	}
	return degree
}

// Classify tells whether moving from current to candidate is a breaking or a
// compatible update. It must only be called with candidate > current.
func Classify(current, candidate Version, breakingDegree int) UpdateType {
	if SamenessDegree(current, candidate) < breakingDegree {
		return BreakingUpdate
	}
	return CompatibleUpdate
}

// Compare compares two versions. See the package-level Compare.
func (c *Comparator) Compare(v1, v2 Version) int {
	return Compare(v1, v2)
}

// IsNewer returns true if candidate is newer than current.
func (c *Comparator) IsNewer(current, candidate Version) bool {
	return Compare(candidate, current) > 0
}

// IsEqual returns true if both versions are equal.
func (c *Comparator) IsEqual(v1, v2 Version) bool {
	return Compare(v1, v2) == 0
}

// GetUpdateType classifies an update from current to candidate.
// The second return value is false when candidate is not newer.
func (c *Comparator) GetUpdateType(current, candidate Version) (UpdateType, bool) {
	if !c.IsNewer(current, candidate) {
		return 0, false
	}
	return Classify(current, candidate, c.breakingDegree), true
}
