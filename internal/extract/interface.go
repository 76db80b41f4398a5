// Package extract defines the format-facing extraction surface: one
// Extractor per supported format, created through a Factory keyed by the
// upload's file extension.
package extract

import (
	"context"

	"github.com/softcover/softcover/pkg/types"
)

// Extractor turns one source file's raw bytes into the normalized content
// model. Extractions of different documents may run concurrently; each
// call owns its working state for its duration and shares nothing.
type Extractor interface {
	// Extract produces the ordered content model for the document.
	Extract(ctx context.Context, data []byte) (*types.ExtractResult, error)

	// SupportedFormats returns the file formats this extractor handles.
	SupportedFormats() []string
}

// Factory creates extractors for supported formats.
type Factory interface {
	// GetExtractor returns an extractor for the given format.
	GetExtractor(format string) (Extractor, error)
}
