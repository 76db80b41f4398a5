package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalAdapter stores blobs under a base directory on the local
// filesystem.
type LocalAdapter struct {
	basePath string
}

// NewLocalAdapter creates the base directory if needed and returns an
// adapter rooted there.
func NewLocalAdapter(basePath string) (*LocalAdapter, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalAdapter{basePath: basePath}, nil
}

// Put writes the blob, creating intermediate directories as needed.
func (l *LocalAdapter) Put(ctx context.Context, path string, data io.Reader) error {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// Get opens the blob for reading.
func (l *LocalAdapter) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", path)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete removes the blob; a missing blob is not an error.
func (l *LocalAdapter) Delete(ctx context.Context, path string) error {
	if err := os.Remove(l.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Exists reports whether the blob is present.
func (l *LocalAdapter) Exists(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(l.resolve(path)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob: %w", err)
	}
	return true, nil
}

// List walks the tree and returns adapter-relative paths under prefix.
func (l *LocalAdapter) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := l.resolve(prefix)
	var paths []string

	err := filepath.WalkDir(l.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(p, fullPrefix) {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return paths, nil
}

// Close is a no-op for the local adapter.
func (l *LocalAdapter) Close() error {
	return nil
}

func (l *LocalAdapter) resolve(path string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(path))
}
