package library

import (
	"fmt"

	"github.com/softcover/softcover/internal/storage"
	"github.com/softcover/softcover/pkg/types"
)

// NewRepository creates the bookshelf repository named by the
// configuration. The storage backend shares the adapter used for blobs;
// the bolt backend owns its own database file.
func NewRepository(cfg types.LibraryConfig, adapter storage.Adapter) (Repository, error) {
	switch cfg.Backend {
	case "", "storage":
		return NewStorageRepository(adapter), nil
	case "bolt":
		return NewBoltRepository(cfg.Bolt.Path)
	default:
		return nil, fmt.Errorf("unknown library backend: %s", cfg.Backend)
	}
}
