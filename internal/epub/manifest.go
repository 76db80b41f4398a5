package epub

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/softcover/softcover/internal/archive"
)

// contentSuffixes are the recognized content-file extensions. Declaration
// order in the manifest is the book's reading order.
var contentSuffixes = []string{".xhtml", ".html"}

// styleSuffix marks stylesheet entries, forwarded to the display layer.
const styleSuffix = ".css"

// opfPackage models the subset of the manifest we consume: item
// declarations in document order. Spine and metadata elements are ignored;
// the manifest's own declaration order carries the reading order.
type opfPackage struct {
	XMLName xml.Name  `xml:"package"`
	Items   []opfItem `xml:"manifest>item"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

// ParseManifest reads the manifest at opfPath and returns content-file
// paths in declaration order plus any declared stylesheet paths. All
// returned paths are absolute within the archive. An empty content list is
// a valid result; callers treat it as a trigger for the fallback scan.
func ParseManifest(a *archive.Archive, opfPath string) (contents, styles []string, err error) {
	data, ok := a.ReadFold(opfPath)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrManifestUnreadable, opfPath)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrManifestUnreadable, err)
	}

	// Item hrefs are relative to the manifest's own directory.
	baseDir := path.Dir(opfPath)

	for _, item := range pkg.Items {
		href := strings.TrimSpace(item.Href)
		if href == "" {
			continue
		}
		switch {
		case hasContentSuffix(href):
			contents = append(contents, resolveHref(baseDir, href))
		case strings.HasSuffix(strings.ToLower(href), styleSuffix):
			styles = append(styles, resolveHref(baseDir, href))
		}
	}

	return contents, styles, nil
}

// hasContentSuffix reports whether href names a content file, ignoring any
// fragment suffix.
func hasContentSuffix(href string) bool {
	lower := strings.ToLower(href)
	if i := strings.IndexByte(lower, '#'); i >= 0 {
		lower = lower[:i]
	}
	for _, suffix := range contentSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// resolveHref joins a manifest-relative href onto the manifest's directory,
// producing an absolute-in-archive path.
func resolveHref(baseDir, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if baseDir == "." || baseDir == "" {
		return path.Clean(href)
	}
	return path.Clean(path.Join(baseDir, href))
}
