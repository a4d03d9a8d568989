// Package store provides the filesystem capability the publisher works
// through: listing, reading, writing, probing and deleting asset files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the file capability consumed by the publisher. Paths are
// slash-separated and relative to the store's root.
type Store interface {
	ListFiles(dir string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	Exists(path string) bool
	DeleteFile(path string) error
}

// FS is a Store rooted at a directory. Every path is resolved inside Root,
// symlinks included, and anything escaping it is refused.
type FS struct {
	Root string
}

// Verify FS implements Store.
var _ Store = (*FS)(nil)

// NewFS returns an FS rooted at root.
func NewFS(root string) *FS {
	return &FS{Root: root}
}

// ListFiles returns the names of the regular files directly inside dir,
// sorted by name.
func (s *FS) ListFiles(dir string) ([]string, error) {
	resolved, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ReadFile returns the contents of path.
func (s *FS) ReadFile(path string) ([]byte, error) {
	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(resolved)
}

// WriteFile writes data to path atomically, creating parent directories.
func (s *FS) WriteFile(path string, data []byte) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Same directory as the target so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".assetpack-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, resolved); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", resolved, err)
	}

	success = true
	return nil
}

// Exists reports whether path names an existing file inside the root.
func (s *FS) Exists(path string) bool {
	resolved, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(resolved)
	return err == nil
}

// DeleteFile removes path.
func (s *FS) DeleteFile(path string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// Abs returns the absolute OS path of a root-relative path without
// resolving symlinks.
func (s *FS) Abs(path string) string {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		root = s.Root
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

func (s *FS) resolve(path string) (string, error) {
	return ValidatePath(s.Root, filepath.FromSlash(path))
}

// ValidatePath checks that target, relative to root, stays inside root once
// symlinks are resolved, and returns the resolved absolute path.
func ValidatePath(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolving root symlinks: %w", err)
	}

	candidate := filepath.Clean(filepath.Join(realRoot, target))
	resolved, err := resolveExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	rootPrefix := realRoot + string(filepath.Separator)
	if resolved != realRoot && !strings.HasPrefix(resolved, rootPrefix) {
		return "", fmt.Errorf("path '%s' resolves to '%s' which is outside the asset root '%s'", target, resolved, realRoot)
	}
	return resolved, nil
}

// resolveExisting resolves symlinks on the longest existing prefix of path
// and appends the rest unchanged.
func resolveExisting(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	dir, base := filepath.Dir(path), filepath.Base(path)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := resolveExisting(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedDir, base), nil
}
