package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore resolves configuration values from files in a directory, one file
// per value, named after the configuration name. This matches how mounted
// secrets volumes surface key material.
type DirStore struct {
	baseDir string
}

// NewDirStore creates a directory-backed store rooted at baseDir.
func NewDirStore(baseDir string) (*DirStore, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("config directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path %s is not a directory", baseDir)
	}
	return &DirStore{baseDir: baseDir}, nil
}

// Get reads the file named after the configuration value. A missing file
// means the value is absent; any other read failure is a store error.
func (s *DirStore) Get(_ context.Context, name string) (string, bool, error) {
	// Configuration names never contain path separators; reject anything
	// that would escape the base directory.
	if name != filepath.Base(name) {
		return "", false, fmt.Errorf("invalid configuration name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), true, nil
}
