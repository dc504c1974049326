package version

import (
	"regexp"
	"strconv"
	"strings"
)

// SlotKind tells whether a change in a version slot is breaking or compatible.
type SlotKind int

const (
	// BreakingSlot is written as "<!>" in a pattern.
	BreakingSlot SlotKind = iota
	// CompatibleSlot is written as "<>" in a pattern.
	CompatibleSlot
)

// String returns the pattern token for the slot kind.
func (k SlotKind) String() string {
	if k == BreakingSlot {
		return breakingToken
	}
	return compatibleToken
}

// Part is a single element of a Pattern: either literal text or a numeric slot.
type Part struct {
	// Literal is the literal text. Empty for slots.
	Literal string

	// Slot is true when the part captures a version component.
	Slot bool

	// Kind is only meaningful when Slot is true.
	Kind SlotKind
}

// LiteralPart returns a literal pattern part.
func LiteralPart(text string) Part {
	return Part{Literal: text}
}

// SlotPart returns a version slot pattern part.
func SlotPart(kind SlotKind) Part {
	return Part{Slot: true, Kind: kind}
}

// Pattern describes which parts of a tag are version components and how many
// of the leading components are breaking.
//
// A Pattern is immutable once parsed. Its regular expression is compiled once
// by ParsePattern and reused for every extraction.
type Pattern struct {
	parts          []Part
	breakingDegree int
	slots          int
	regex          *regexp.Regexp
}

// Parts returns a copy of the pattern parts in order.
func (p *Pattern) Parts() []Part {
	out := make([]Part, len(p.parts))
	copy(out, p.parts)
	return out
}

// BreakingDegree is the number of leading slots whose change is breaking.
func (p *Pattern) BreakingDegree() int {
	return p.breakingDegree
}

// Slots is the number of version slots, which is the arity of every Version
// extracted with this pattern.
func (p *Pattern) Slots() int {
	return p.slots
}

// Regexp returns the anchored regular expression derived from the pattern.
func (p *Pattern) Regexp() *regexp.Regexp {
	return p.regex
}

// Equal reports whether two patterns have the same parts and breaking degree.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.breakingDegree != other.breakingDegree || len(p.parts) != len(other.parts) {
		return false
	}
	for i := range p.parts {
		if p.parts[i] != other.parts[i] {
			return false
		}
	}
	return true
}

// String renders the pattern in its DSL form. The first BreakingDegree slots
// are written as "<!>", the remaining ones as "<>".
func (p *Pattern) String() string {
	var b strings.Builder
	seen := 0
	for _, part := range p.parts {
		if !part.Slot {
			b.WriteString(part.Literal)
			continue
		}
		seen++
		if seen <= p.breakingDegree {
			b.WriteString(breakingToken)
		} else {
			b.WriteString(compatibleToken)
		}
	}
	return b.String()
}

// Version is an ordered tuple of non-negative integers, one per pattern slot.
// Versions are only comparable when extracted with the same pattern.
type Version struct {
	parts []uint64
}

// NewVersion creates a version from its components.
func NewVersion(parts ...uint64) Version {
	cp := make([]uint64, len(parts))
	copy(cp, parts)
	return Version{parts: cp}
}

// Parts returns a copy of the version components.
func (v Version) Parts() []uint64 {
	out := make([]uint64, len(v.parts))
	copy(out, v.parts)
	return out
}

// Len returns the number of components.
func (v Version) Len() int {
	return len(v.parts)
}

// String returns the components joined by dots, e.g. "14.4".
func (v Version) String() string {
	s := make([]string, len(v.parts))
	for i, part := range v.parts {
		s[i] = strconv.FormatUint(part, 10)
	}
	return strings.Join(s, ".")
}

// UpdateType classifies a newer version relative to the current one.
type UpdateType int

const (
	// CompatibleUpdate keeps every breaking component unchanged.
	CompatibleUpdate UpdateType = iota
	// BreakingUpdate changes at least one breaking component.
	BreakingUpdate
)

// String returns the string representation of the update type.
func (ut UpdateType) String() string {
	switch ut {
	case CompatibleUpdate:
		return "compatible"
	case BreakingUpdate:
		return "breaking"
	default:
		return "unknown"
	}
}
