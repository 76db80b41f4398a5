package epub

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/archive"
	"github.com/softcover/softcover/internal/sanitize"
	"github.com/softcover/softcover/pkg/types"
)

// Assembler turns an ordered list of content paths into the final chapter
// sequence, sanitizing each file and deriving a display title.
type Assembler struct {
	sanitizer *sanitize.Sanitizer
	logger    *zap.Logger
}

// NewAssembler creates an Assembler using the given sanitizer.
func NewAssembler(sanitizer *sanitize.Sanitizer, logger *zap.Logger) *Assembler {
	return &Assembler{sanitizer: sanitizer, logger: logger}
}

// Assemble reads each content path from the archive in input order. Files
// that cannot be read are logged and skipped; files whose sanitized content
// is empty are dropped silently. Surviving chapters are numbered
// contiguously from 1 in input order, so chapter IDs stay stable across
// repeated extractions of the same bytes. Returns ErrNoReadableContent
// when nothing survives.
func (as *Assembler) Assemble(a *archive.Archive, paths []string) ([]*types.Chapter, error) {
	chapters := make([]*types.Chapter, 0, len(paths))

	for _, p := range paths {
		data, ok := a.Read(p)
		if !ok {
			as.logger.Warn("content file missing from archive, skipping",
				zap.String("path", p))
			continue
		}

		raw := string(data)
		content := as.sanitizer.Content(raw)
		if content == "" {
			continue
		}

		ordinal := len(chapters) + 1
		chapters = append(chapters, &types.Chapter{
			ID:      chapterID(ordinal),
			Number:  ordinal,
			Title:   as.sanitizer.ChapterTitle(raw, ordinal),
			Content: content,
		})
	}

	if len(chapters) == 0 {
		return nil, ErrNoReadableContent
	}
	return chapters, nil
}

// chapterID derives the stable chapter identity from its ordinal.
func chapterID(ordinal int) string {
	return fmt.Sprintf("chapter_%03d", ordinal)
}
