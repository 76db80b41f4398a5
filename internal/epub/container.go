package epub

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/softcover/softcover/internal/archive"
)

// containerPath is the fixed, well-known location of the container
// descriptor inside the archive.
const containerPath = "META-INF/container.xml"

// metaDir is the container's reserved metadata directory; the fallback
// scan never treats files under it as content.
const metaDir = "META-INF/"

// containerXML models the container descriptor naming the manifest file.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// ResolveContainer locates the container descriptor and returns the
// archive path of the manifest it declares. Returns ErrContainerMissing
// when the descriptor is absent and ErrContainerMalformed when it declares
// no usable full-path.
func ResolveContainer(a *archive.Archive) (string, error) {
	data, ok := a.ReadFold(containerPath)
	if !ok {
		return "", ErrContainerMissing
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContainerMalformed, err)
	}

	for _, rf := range c.RootFiles {
		if p := strings.TrimSpace(rf.FullPath); p != "" {
			return p, nil
		}
	}
	return "", ErrContainerMalformed
}
