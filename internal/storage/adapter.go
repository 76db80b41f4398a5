// Package storage abstracts where book blobs and extracted records live:
// a local directory for single-host deployments, or an S3-compatible
// bucket when the bookshelf is shared.
package storage

import (
	"context"
	"io"
)

// Adapter is the blob-store interface the library and API layers write
// through. Paths are forward-slash keys relative to the adapter's root.
type Adapter interface {
	// Put stores data at the given path, replacing any existing blob.
	Put(ctx context.Context, path string, data io.Reader) error

	// Get opens the blob at the given path for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob at the given path. Deleting a missing blob
	// is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a blob exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all blobs under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any backend resources.
	Close() error
}
