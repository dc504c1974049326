// Package dockerfile extracts annotated base images from Dockerfiles.
package dockerfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/logging"
)

// scratch is the empty base image; it has no tags.
const scratch = "scratch"

// Load reads the Dockerfile at path and returns its base images.
func Load(fs afero.Fs, path string) ([]image.Occurrence, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dockerfile: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse scans a Dockerfile and returns one occurrence per FROM instruction
// that names a tagged image. A pattern annotation on the line directly above
// the instruction is attached to it.
//
// Stage references, scratch, references built from ARG values, references
// without a tag or pinned by digest and invalid references are skipped.
func Parse(r io.Reader, source string) ([]image.Occurrence, error) {
	var (
		occurrences []image.Occurrence
		previous    string
		lineNo      int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		ref, ok := fromReference(line)
		if ok {
			occ, keep, err := occurrence(ref, previous)
			if err != nil {
				logging.Warn("Skipping base image at %s:%d: %v", source, lineNo, err)
			}
			if keep {
				occ.Source = source
				occ.Line = lineNo
				occurrences = append(occurrences, occ)
			}
		}
		previous = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}

	return occurrences, nil
}

// fromReference returns the image reference of a FROM instruction.
func fromReference(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "FROM") {
		return "", false
	}
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "--") {
			continue
		}
		return field, true
	}
	return "", false
}

func occurrence(ref, previous string) (image.Occurrence, bool, error) {
	if strings.EqualFold(ref, scratch) || strings.Contains(ref, "$") {
		logging.Debug("Skipping base image %s", ref)
		return image.Occurrence{}, false, nil
	}

	img, err := image.Parse(ref)
	if errors.Is(err, image.ErrMissingTag) || errors.Is(err, image.ErrDigestPinned) {
		logging.Debug("Skipping base image %s: %v", ref, err)
		return image.Occurrence{}, false, nil
	}
	if err != nil {
		return image.Occurrence{}, false, err
	}

	occ := image.Occurrence{Image: img}
	occ.Pattern, occ.HasPattern = ParseAnnotation(previous)
	return occ, true, nil
}
