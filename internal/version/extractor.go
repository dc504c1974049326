package version

import "strconv"

// ExtractFrom applies the pattern to a tag and returns the captured version.
//
// Extraction fails when the tag does not match the pattern as a whole, when a
// captured component does not fit in a uint64, or when the pattern has no
// slots at all (such a pattern can never describe an update).
func (p *Pattern) ExtractFrom(tag string) (Version, bool) {
	if p.slots == 0 {
		return Version{}, false
	}

	m := p.regex.FindStringSubmatch(tag)
	if m == nil {
		return Version{}, false
	}

	parts := make([]uint64, 0, len(m)-1)
	for _, group := range m[1:] {
		n, err := strconv.ParseUint(group, 10, 64)
		if err != nil {
			return Version{}, false
		}
		parts = append(parts, n)
	}
	return Version{parts: parts}, true
}

// Matches reports whether the tag can be extracted with the pattern.
func (p *Pattern) Matches(tag string) bool {
	_, ok := p.ExtractFrom(tag)
	return ok
}
