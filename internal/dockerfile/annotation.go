package dockerfile

import (
	"regexp"
	"strings"
)

// annotationRegex matches a pattern annotation comment:
//
//	# uptag --pattern "<!>.<>"
var annotationRegex = regexp.MustCompile(`^\s*#\s*uptag\s+--pattern\s+"([^"]*)"\s*$`)

// ParseAnnotation returns the pattern of an annotation line.
func ParseAnnotation(line string) (string, bool) {
	m := annotationRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindAnnotation returns the pattern of a block of comment lines whose last
// line is an annotation, as yaml.v3 reports the comments above a key.
func FindAnnotation(comment string) (string, bool) {
	comment = strings.TrimRight(comment, "\n")
	if i := strings.LastIndex(comment, "\n"); i >= 0 {
		comment = comment[i+1:]
	}
	return ParseAnnotation(comment)
}
