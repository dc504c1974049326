// Package image models container image references of the form
// [registry/][namespace/]name:tag.
package image

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// DefaultDomain is the registry assumed when a reference names none.
const DefaultDomain = "docker.io"

// officialNamespace is the implicit Docker Hub namespace of official images.
const officialNamespace = "library"

// Image is a tagged image reference.
type Image struct {
	// Domain is the registry host, e.g. "docker.io" or "ghcr.io".
	Domain string

	// Namespace is everything between the domain and the last path
	// element. Empty for Docker Hub official images.
	Namespace string

	// Name is the last path element.
	Name string

	// Tag is the tag the reference points at.
	Tag string
}

// Parse parses an image reference such as "ubuntu:14.04",
// "bitnami/redis:7.2" or "ghcr.io/org/app:1.0".
//
// References without a tag or pinned by digest are rejected, since neither
// can be checked for a newer tag.
func Parse(ref string) (Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Image{}, ErrEmptyReference
	}

	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return Image{}, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}

	if _, ok := named.(reference.Digested); ok {
		return Image{}, fmt.Errorf("%q: %w", ref, ErrDigestPinned)
	}

	tagged, ok := named.(reference.Tagged)
	if !ok {
		return Image{}, fmt.Errorf("%q: %w", ref, ErrMissingTag)
	}

	img := Image{
		Domain: reference.Domain(named),
		Tag:    tagged.Tag(),
	}

	path := reference.Path(named)
	if i := strings.LastIndex(path, "/"); i >= 0 {
		img.Namespace = path[:i]
		img.Name = path[i+1:]
	} else {
		img.Name = path
	}
	if img.Domain == DefaultDomain && img.Namespace == officialNamespace {
		img.Namespace = ""
	}

	return img, nil
}

// MustParse is like Parse but panics on error.
func MustParse(ref string) Image {
	img, err := Parse(ref)
	if err != nil {
		panic(err)
	}
	return img
}

// IsDockerHub reports whether the image is hosted on Docker Hub.
func (i Image) IsDockerHub() bool {
	return i.Domain == "" || i.Domain == DefaultDomain
}

// Path returns the repository path without the domain, e.g. "bitnami/redis".
// Docker Hub official images return just their name.
func (i Image) Path() string {
	if i.Namespace == "" {
		return i.Name
	}
	return i.Namespace + "/" + i.Name
}

// Repository returns the repository path as the registry API expects it.
// Docker Hub official images live under the "library" namespace.
func (i Image) Repository() string {
	if i.IsDockerHub() && i.Namespace == "" {
		return officialNamespace + "/" + i.Name
	}
	return i.Path()
}

// FullName returns the repository including its domain, e.g. "ghcr.io/org/app".
func (i Image) FullName() string {
	return i.Domain + "/" + i.Repository()
}

// String returns the reference as written by users, omitting docker.io.
func (i Image) String() string {
	return i.NameOnly() + ":" + i.Tag
}

// NameOnly returns the reference without its tag, omitting docker.io.
func (i Image) NameOnly() string {
	if i.IsDockerHub() {
		return i.Path()
	}
	return i.Domain + "/" + i.Path()
}

// WithTag returns a copy of the image pointing at another tag.
func (i Image) WithTag(tag string) Image {
	i.Tag = tag
	return i
}
