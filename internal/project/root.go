package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FindStitchToml walks up from startDir to locate stitch.toml.
func FindStitchToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing stitch.toml, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindStitchToml(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// LoadFrom finds and loads the manifest governing startDir. When no manifest
// exists, the built-in defaults apply and root is startDir.
func LoadFrom(startDir string) (m *Manifest, root string, err error) {
	manifestPath, ok, err := FindStitchToml(startDir)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		if startDir == "" {
			startDir = "."
		}
		abs, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, "", absErr
		}
		return Default(), abs, nil
	}
	m, err = Load(manifestPath)
	if err != nil {
		return nil, "", err
	}
	return m, filepath.Dir(manifestPath), nil
}
