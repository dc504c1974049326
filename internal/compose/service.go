package compose

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/chis/uptag/internal/dockerfile"
	"github.com/chis/uptag/internal/image"
)

// ErrNoImage is returned for a service with neither an image nor a build section.
var ErrNoImage = errors.New("service has neither image nor build")

const defaultDockerfile = "Dockerfile"

// BuildSection returns the build section of the service, if any. A string
// value is the context directory; a mapping may set context and dockerfile.
func (s Service) BuildSection() (*Build, error) {
	node := lookup(s.Node, "build")
	if node == nil {
		return nil, nil
	}

	build := &Build{Context: ".", Dockerfile: defaultDockerfile}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != "" {
			build.Context = node.Value
		}
	case yaml.MappingNode:
		if ctx := lookup(node, "context"); ctx != nil && ctx.Value != "" {
			build.Context = ctx.Value
		}
		if df := lookup(node, "dockerfile"); df != nil && df.Value != "" {
			build.Dockerfile = df.Value
		}
	default:
		return nil, fmt.Errorf("service %s: unsupported build section", s.Name)
	}
	return build, nil
}

// DockerfilePath returns the path of the Dockerfile a build section points at.
func (s Service) DockerfilePath(b *Build) string {
	if filepath.IsAbs(b.Dockerfile) {
		return b.Dockerfile
	}
	dir := b.Context
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.Dir, dir)
	}
	return filepath.Join(dir, b.Dockerfile)
}

// ImageOccurrence returns the image named by the service's image key and the
// pattern annotated on the comment directly above that key.
func (s Service) ImageOccurrence(source string) (image.Occurrence, bool, error) {
	key, value := lookupKey(s.Node, "image")
	if value == nil {
		return image.Occurrence{}, false, nil
	}

	img, err := image.Parse(value.Value)
	if err != nil {
		return image.Occurrence{}, false, fmt.Errorf("service %s: %w", s.Name, err)
	}

	occ := image.Occurrence{Image: img, Source: source, Line: value.Line}
	comment := key.HeadComment
	if comment == "" && s.Node.Content[0] == key {
		// yaml.v3 may attach the comment above the first key to the mapping
		comment = s.Node.HeadComment
	}
	occ.Pattern, occ.HasPattern = dockerfile.FindAnnotation(comment)
	return occ, true, nil
}

// Occurrences returns the images to check for a service. A service with a
// build section is checked through its Dockerfile; otherwise its image key is
// used.
func (s Service) Occurrences(fs afero.Fs, source string) ([]image.Occurrence, error) {
	build, err := s.BuildSection()
	if err != nil {
		return nil, err
	}
	if build != nil {
		return dockerfile.Load(fs, s.DockerfilePath(build))
	}

	occ, ok, err := s.ImageOccurrence(source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("service %s: %w", s.Name, ErrNoImage)
	}
	return []image.Occurrence{occ}, nil
}
