package epub

import (
	"strings"

	"github.com/softcover/softcover/internal/archive"
)

// ScanArchive is the best-effort substitute used when no usable manifest
// exists: it collects every content-suffixed entry outside the reserved
// metadata directory, in the archive's native enumeration order, plus any
// stylesheet entries.
//
// The resulting order is the order entries were inserted into the archive,
// which is not guaranteed to match authorial reading order. No reordering
// heuristic is applied.
func ScanArchive(a *archive.Archive) (contents, styles []string) {
	for _, name := range a.Names() {
		if strings.HasPrefix(name, metaDir) {
			continue
		}
		switch {
		case hasContentSuffix(name):
			contents = append(contents, name)
		case strings.HasSuffix(strings.ToLower(name), styleSuffix):
			styles = append(styles, name)
		}
	}
	return contents, styles
}
