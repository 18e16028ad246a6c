package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ErrNoProject is returned when no manifest is found walking up from the
// starting directory.
var ErrNoProject = errors.New("no " + ManifestFileName + " found in this or any parent directory")

// Parse reads and unmarshals a manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s missing required 'name' field", path)
	}

	return &m, nil
}

// Save marshals the manifest and writes it to path.
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Discover walks upward from startDir looking for a kiln.yaml and returns
// the project root directory. Returns ErrNoProject when the filesystem
// root is reached without finding one.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// Load discovers the project containing startDir and parses its manifest.
// Returns the project root alongside the manifest.
func Load(startDir string) (string, *Manifest, error) {
	root, err := Discover(startDir)
	if err != nil {
		return "", nil, err
	}

	m, err := Parse(filepath.Join(root, ManifestFileName))
	if err != nil {
		return "", nil, err
	}

	return root, m, nil
}
