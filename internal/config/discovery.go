package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// composeFileNames are the manifest names looked up in a directory, in order.
var composeFileNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yaml",
	"docker-compose.yml",
}

// IsComposeFile checks if a filename matches known compose file names.
// Supports: docker-compose.yml, docker-compose.yaml, compose.yml, compose.yaml
// Matching is case-insensitive.
func IsComposeFile(filename string) bool {
	lower := strings.ToLower(filepath.Base(filename))
	for _, name := range composeFileNames {
		if lower == name {
			return true
		}
	}
	return false
}

// FindComposeFile returns the compose manifest of a directory, trying the
// names docker compose itself looks for.
func FindComposeFile(fs afero.Fs, dir string) (string, error) {
	for _, name := range composeFileNames {
		path := filepath.Join(dir, name)
		info, err := fs.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no compose file found in %s", dir)
}

// ResolveComposePath turns a path argument into a manifest path. Directories
// are searched with FindComposeFile.
func ResolveComposePath(fs afero.Fs, path string) (string, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read compose file: %w", err)
	}
	if info.IsDir() {
		return FindComposeFile(fs, path)
	}
	return path, nil
}
