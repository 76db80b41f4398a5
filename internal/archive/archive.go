// Package archive loads a ZIP-style e-book container into an immutable
// in-memory index of entry name to byte content. The index is owned by a
// single extraction request and discarded with it; nothing is cached
// between requests.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Archive is an in-memory index over a ZIP container. Entry enumeration
// order follows the archive's central directory, which is the order
// entries were inserted.
type Archive struct {
	names []string
	files map[string][]byte
}

// Open reads every entry of the ZIP container held in data into memory.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: open container: %w", err)
	}

	a := &Archive{
		names: make([]string, 0, len(zr.File)),
		files: make(map[string][]byte, len(zr.File)),
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: open entry %q: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %q: %w", f.Name, err)
		}
		if _, dup := a.files[f.Name]; !dup {
			a.names = append(a.names, f.Name)
		}
		a.files[f.Name] = content
	}

	return a, nil
}

// Names returns entry names in the archive's native enumeration order.
// The returned slice is shared; callers must not modify it.
func (a *Archive) Names() []string {
	return a.names
}

// Read returns the content of the named entry.
func (a *Archive) Read(name string) ([]byte, bool) {
	content, ok := a.files[name]
	return content, ok
}

// ReadFold is Read with a case-insensitive name match, for containers
// written by tools that disagree about entry-name casing.
func (a *Archive) ReadFold(name string) ([]byte, bool) {
	if content, ok := a.files[name]; ok {
		return content, true
	}
	for n, content := range a.files {
		if strings.EqualFold(n, name) {
			return content, true
		}
	}
	return nil, false
}

// Len returns the number of file entries in the archive.
func (a *Archive) Len() int {
	return len(a.names)
}
