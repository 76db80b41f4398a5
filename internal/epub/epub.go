// Package epub extracts an ordered chapter sequence from a ZIP-based
// e-book archive. The container descriptor names the manifest; the
// manifest's item declarations, in declaration order, are the book's
// reading order. When either is missing or empty the archive's file table
// is scanned directly as a best-effort fallback.
package epub

import (
	"errors"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/archive"
	"github.com/softcover/softcover/internal/sanitize"
	"github.com/softcover/softcover/pkg/types"
)

// Extract runs the archive pipeline over raw archive bytes: resolve the
// container descriptor, parse the manifest, fall back to a direct scan
// when no content paths can be discovered, then assemble chapters.
// Stylesheet text collected along the way is returned to the caller rather
// than applied anywhere; the display layer owns style injection.
func Extract(data []byte, sanitizer *sanitize.Sanitizer, logger *zap.Logger) (*types.ExtractResult, error) {
	a, err := archive.Open(data)
	if err != nil {
		return nil, err
	}

	contents, stylePaths := discoverContent(a, logger)

	assembler := NewAssembler(sanitizer, logger)
	chapters, err := assembler.Assemble(a, contents)
	if err != nil {
		return nil, err
	}

	return &types.ExtractResult{
		Chapters: chapters,
		Styles:   readStyles(a, stylePaths, logger),
	}, nil
}

// discoverContent finds content and stylesheet paths via the manifest,
// degrading to the direct scan whenever the manifest route yields nothing.
func discoverContent(a *archive.Archive, logger *zap.Logger) (contents, styles []string) {
	opfPath, err := ResolveContainer(a)
	if err == nil {
		contents, styles, err = ParseManifest(a, opfPath)
	}
	if err != nil {
		if !errors.Is(err, ErrContainerMissing) {
			logger.Warn("manifest unusable, scanning archive directly", zap.Error(err))
		}
		return ScanArchive(a)
	}
	if len(contents) == 0 {
		return ScanArchive(a)
	}
	return contents, styles
}

// readStyles loads declared stylesheet entries, skipping unreadable ones.
func readStyles(a *archive.Archive, paths []string, logger *zap.Logger) []string {
	var styles []string
	for _, p := range paths {
		data, ok := a.Read(p)
		if !ok {
			logger.Warn("stylesheet missing from archive, skipping", zap.String("path", p))
			continue
		}
		styles = append(styles, string(data))
	}
	return styles
}
