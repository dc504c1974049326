package version

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	breakingToken   = "<!>"
	compatibleToken = "<>"

	// slotExpr captures one version component.
	slotExpr = `(\d+)`
)

// PatternSyntaxError reports a pattern that could not be parsed.
// Position is the byte offset of the offending input.
type PatternSyntaxError struct {
	Input    string
	Position int
	Reason   string
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("invalid pattern %q at position %d: %s", e.Input, e.Position, e.Reason)
}

// Pointer renders the input with a caret under the offending position.
func (e *PatternSyntaxError) Pointer() string {
	return e.Input + "\n" + strings.Repeat(" ", e.Position) + "^"
}

// ParsePattern parses a version pattern.
//
// A pattern is a sequence of literal runs and version slots:
//   - "<!>" marks a breaking component,
//   - "<>" marks a compatible component,
//   - literals may contain ASCII letters, digits, '.', '-' and '_'.
//
// All breaking slots must come before the first compatible slot.
// Examples:
//   - "<!>.<>.<>" -> major is breaking, minor and patch are compatible
//   - "debian-<>-beta" -> one compatible component wrapped in literals
func ParsePattern(input string) (*Pattern, error) {
	var (
		parts          []Part
		breakingDegree int
		slots          int
		seenCompatible bool
	)

	pos := 0
	for pos < len(input) {
		rest := input[pos:]
		switch {
		case strings.HasPrefix(rest, breakingToken):
			if seenCompatible {
				return nil, &PatternSyntaxError{
					Input:    input,
					Position: pos,
					Reason:   fmt.Sprintf("breaking slot %q follows a compatible slot %q", breakingToken, compatibleToken),
				}
			}
			parts = append(parts, SlotPart(BreakingSlot))
			breakingDegree++
			slots++
			pos += len(breakingToken)

		case strings.HasPrefix(rest, compatibleToken):
			seenCompatible = true
			parts = append(parts, SlotPart(CompatibleSlot))
			slots++
			pos += len(compatibleToken)

		case isLiteralByte(input[pos]):
			start := pos
			for pos < len(input) && isLiteralByte(input[pos]) {
				pos++
			}
			parts = append(parts, LiteralPart(input[start:pos]))

		default:
			r, _ := utf8.DecodeRuneInString(rest)
			reason := fmt.Sprintf("unexpected character %q", r)
			if r == '<' {
				reason = fmt.Sprintf("unterminated slot, expected %q or %q", breakingToken, compatibleToken)
			}
			return nil, &PatternSyntaxError{Input: input, Position: pos, Reason: reason}
		}
	}

	return &Pattern{
		parts:          parts,
		breakingDegree: breakingDegree,
		slots:          slots,
		regex:          regexp.MustCompile(deriveRegex(parts)),
	}, nil
}

// MustParsePattern is like ParsePattern but panics on error.
// It is meant for patterns known at compile time.
func MustParsePattern(input string) *Pattern {
	p, err := ParsePattern(input)
	if err != nil {
		panic(err)
	}
	return p
}

// deriveRegex builds the anchored expression for a list of parts.
func deriveRegex(parts []Part) string {
	var b strings.Builder
	b.WriteString("^")
	for _, part := range parts {
		if part.Slot {
			b.WriteString(slotExpr)
		} else {
			b.WriteString(regexp.QuoteMeta(part.Literal))
		}
	}
	b.WriteString("$")
	return b.String()
}

// isLiteralByte reports whether c may appear in a literal run.
func isLiteralByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-':
		return true
	default:
		return false
	}
}
