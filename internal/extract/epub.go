package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/epub"
	"github.com/softcover/softcover/internal/sanitize"
	"github.com/softcover/softcover/pkg/types"
)

// EPUBExtractor runs the archive pipeline: container resolution, manifest
// parsing with direct-scan fallback, sanitization, chapter assembly.
type EPUBExtractor struct {
	sanitizer *sanitize.Sanitizer
	logger    *zap.Logger
}

// NewEPUBExtractor creates an extractor for ZIP-based archive books.
func NewEPUBExtractor(sanitizer *sanitize.Sanitizer, logger *zap.Logger) *EPUBExtractor {
	return &EPUBExtractor{sanitizer: sanitizer, logger: logger}
}

// Extract produces the ordered chapter sequence and any declared
// stylesheet text for the archive held in data.
func (e *EPUBExtractor) Extract(ctx context.Context, data []byte) (*types.ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return epub.Extract(data, e.sanitizer, e.logger)
}

// SupportedFormats returns the formats this extractor supports.
func (e *EPUBExtractor) SupportedFormats() []string {
	return []string{"epub"}
}
