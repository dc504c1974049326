// Package compose reads the services of compose manifests and the images
// they reference.
package compose

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNoServices is returned for a manifest without services.
var ErrNoServices = errors.New("no services section found in compose file")

// maxIncludeDepth bounds nested include sections.
const maxIncludeDepth = 8

// Load loads a compose manifest while preserving comments.
// Services of files listed under include are appended after the services of
// the including file.
func Load(fs afero.Fs, path string) (*File, error) {
	root, services, err := load(fs, path, 0)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, ErrNoServices
	}

	return &File{
		Path:     path,
		Root:     root,
		Services: services,
	}, nil
}

func load(fs afero.Fs, path string, depth int) (*yaml.Node, []Service, error) {
	if depth > maxIncludeDepth {
		return nil, nil, fmt.Errorf("include depth exceeded at %s", path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read compose file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("failed to parse compose file %s: %w", path, err)
	}

	// Root is typically a document node containing a mapping node
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return &root, nil, nil
	}
	top := root.Content[0]
	dir := filepath.Dir(path)

	var services []Service
	if node := lookup(top, "services"); node != nil {
		if node.Kind != yaml.MappingNode {
			return nil, nil, fmt.Errorf("%s: services must be a mapping", path)
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			services = append(services, Service{
				Name: node.Content[i].Value,
				Dir:  dir,
				Node: node.Content[i+1],
			})
		}
	}

	for _, include := range includePaths(top) {
		if !filepath.IsAbs(include) {
			include = filepath.Join(dir, include)
		}
		_, included, err := load(fs, include, depth+1)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load include %s: %w", include, err)
		}
		services = append(services, included...)
	}

	return &root, services, nil
}

// includePaths returns the files of an include section. Entries are either
// paths or mappings with a path key.
func includePaths(top *yaml.Node) []string {
	node := lookup(top, "include")
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}

	var paths []string
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			paths = append(paths, item.Value)
		case yaml.MappingNode:
			if p := lookup(item, "path"); p != nil && p.Kind == yaml.ScalarNode {
				paths = append(paths, p.Value)
			}
		}
	}
	return paths
}

// lookupKey returns the key and value nodes of a mapping entry.
func lookupKey(mapping *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i], mapping.Content[i+1]
		}
	}
	return nil, nil
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	_, value := lookupKey(mapping, key)
	return value
}
