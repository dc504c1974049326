package compose

import "gopkg.in/yaml.v3"

// File is a parsed compose manifest.
// Uses yaml.v3.Node to keep the comments that carry pattern annotations.
type File struct {
	// Path is the path the manifest was loaded from
	Path string

	// Root is the root YAML node containing the entire document
	Root *yaml.Node

	// Services lists the services of the manifest and of its includes, in
	// file order
	Services []Service
}

// Service is a service definition within a compose manifest.
type Service struct {
	// Name is the service name (key in the services map)
	Name string

	// Dir is the directory of the file declaring the service. Relative build
	// contexts are resolved against it.
	Dir string

	// Node is the YAML node containing the service definition
	Node *yaml.Node
}

// Build is the build section of a service.
type Build struct {
	// Context is the build context directory
	Context string

	// Dockerfile is the Dockerfile path, relative to Context
	Dockerfile string
}
