// Package pdfpage reads page-oriented documents and reconstructs each
// page's reading order from its positioned text runs.
//
// The document reader is a deliberately compact scanner: it walks the
// file's indirect objects directly rather than the cross-reference table,
// decodes Flate-compressed content streams, and interprets the text
// operators (BT/ET, Tf, Td/TD/Tm/T*/TL, Tj/TJ/'/") to recover positioned
// runs. Fonts, encodings beyond byte text, and non-Flate filters are out
// of scope; an undecodable page surfaces ErrPageUnreadable for that page
// only.
package pdfpage

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// defaultPageHeight is used when no MediaBox can be resolved for a page
// (US Letter height in points).
const defaultPageHeight = 792.0

// Document is a loaded page-oriented file: one decoded content stream and
// vertical extent per page, in document order.
type Document struct {
	pages []pageData
}

type pageData struct {
	height  float64
	content []byte
	err     error
}

var (
	objHeadPattern  = regexp.MustCompile(`(\d+)\s+\d+\s+obj\b`)
	pageTypePattern = regexp.MustCompile(`/Type\s*/Page\b`)
	mediaBoxPattern = regexp.MustCompile(`/MediaBox\s*\[\s*([\d.eE+-]+)\s+([\d.eE+-]+)\s+([\d.eE+-]+)\s+([\d.eE+-]+)`)
	parentPattern   = regexp.MustCompile(`/Parent\s+(\d+)\s+\d+\s+R`)
	contentsRef     = regexp.MustCompile(`/Contents\s+(\d+)\s+\d+\s+R`)
	contentsArray   = regexp.MustCompile(`/Contents\s*\[([^\]]*)\]`)
	objRefPattern   = regexp.MustCompile(`(\d+)\s+\d+\s+R`)
	filterPattern   = regexp.MustCompile(`/Filter\b`)
	flatePattern    = regexp.MustCompile(`/FlateDecode\b`)
	lengthPattern   = regexp.MustCompile(`/Length\s+(\d+)`)
	indirectTail    = regexp.MustCompile(`^\s+\d+\s+R`)
)

// Load indexes the document's pages. It fails with ErrDocumentLoadFailed
// when the bytes are not a PDF, the document is encrypted, or no page
// objects can be located; individual pages whose content streams cannot be
// decoded are deferred to per-page errors instead.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: missing document header", ErrDocumentLoadFailed)
	}
	if encrypted(data) {
		return nil, fmt.Errorf("%w: document is encrypted", ErrDocumentLoadFailed)
	}

	order, objects := scanObjects(data)
	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no indirect objects found", ErrDocumentLoadFailed)
	}

	doc := &Document{}
	for _, num := range order {
		body := objects[num]
		dict := dictPart(body)
		if !pageTypePattern.Match(dict) {
			continue
		}
		doc.pages = append(doc.pages, loadPage(dict, objects))
	}

	if len(doc.pages) == 0 {
		return nil, fmt.Errorf("%w: no page objects found", ErrDocumentLoadFailed)
	}
	return doc, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Runs returns the unordered text runs of the 1-based page pageNum along
// with the page's vertical extent. The caller validates the page number
// range before navigation; out-of-range requests still fail safely here.
func (d *Document) Runs(pageNum int) ([]TextRun, float64, error) {
	if pageNum < 1 || pageNum > len(d.pages) {
		return nil, 0, fmt.Errorf("%w: page %d of %d", ErrPageUnreadable, pageNum, len(d.pages))
	}
	p := d.pages[pageNum-1]
	if p.err != nil {
		return nil, 0, p.err
	}
	return interpretContent(p.content), p.height, nil
}

// encrypted reports whether the trailer declares an encryption dictionary.
func encrypted(data []byte) bool {
	idx := bytes.LastIndex(data, []byte("trailer"))
	if idx < 0 {
		return false
	}
	return bytes.Contains(data[idx:], []byte("/Encrypt"))
}

// scanObjects walks "N G obj ... endobj" spans, returning object numbers
// in file order and a number-to-body map.
func scanObjects(data []byte) ([]int, map[int][]byte) {
	objects := make(map[int][]byte)
	var order []int

	for _, loc := range objHeadPattern.FindAllSubmatchIndex(data, -1) {
		num, err := strconv.Atoi(string(data[loc[2]:loc[3]]))
		if err != nil {
			continue
		}
		bodyStart := loc[1]
		end := bytes.Index(data[bodyStart:], []byte("endobj"))
		if end < 0 {
			continue
		}
		if _, dup := objects[num]; !dup {
			order = append(order, num)
		}
		objects[num] = data[bodyStart : bodyStart+end]
	}
	return order, objects
}

// dictPart returns the object's dictionary portion, excluding any stream
// payload that may contain misleading keyword bytes.
func dictPart(body []byte) []byte {
	if i := bytes.Index(body, []byte("stream")); i >= 0 {
		return body[:i]
	}
	return body
}

// loadPage resolves one page object's height and decoded content stream.
func loadPage(dict []byte, objects map[int][]byte) pageData {
	p := pageData{height: resolveHeight(dict, objects, 0)}

	refs := contentRefs(dict)
	if len(refs) == 0 {
		// A page with no content streams renders as empty, not as an error.
		return p
	}

	var buf bytes.Buffer
	for _, ref := range refs {
		body, ok := objects[ref]
		if !ok {
			p.err = fmt.Errorf("%w: content object %d missing", ErrPageUnreadable, ref)
			return p
		}
		decoded, err := decodeStream(body)
		if err != nil {
			p.err = fmt.Errorf("%w: %v", ErrPageUnreadable, err)
			return p
		}
		buf.Write(decoded)
		buf.WriteByte('\n')
	}
	p.content = buf.Bytes()
	return p
}

// resolveHeight finds the page's MediaBox height, following the Parent
// chain when the page inherits it from the page tree.
func resolveHeight(dict []byte, objects map[int][]byte, depth int) float64 {
	if m := mediaBoxPattern.FindSubmatch(dict); m != nil {
		y1, err1 := strconv.ParseFloat(string(m[2]), 64)
		y2, err2 := strconv.ParseFloat(string(m[4]), 64)
		if err1 == nil && err2 == nil && y2 > y1 {
			return y2 - y1
		}
	}
	if depth >= 8 {
		return defaultPageHeight
	}
	if m := parentPattern.FindSubmatch(dict); m != nil {
		num, err := strconv.Atoi(string(m[1]))
		if err == nil {
			if parent, ok := objects[num]; ok {
				return resolveHeight(dictPart(parent), objects, depth+1)
			}
		}
	}
	return defaultPageHeight
}

// contentRefs extracts the object numbers of a page's content streams,
// handling both the single-reference and array forms.
func contentRefs(dict []byte) []int {
	var refs []int
	if m := contentsArray.FindSubmatch(dict); m != nil {
		for _, r := range objRefPattern.FindAllSubmatch(m[1], -1) {
			if num, err := strconv.Atoi(string(r[1])); err == nil {
				refs = append(refs, num)
			}
		}
		return refs
	}
	if m := contentsRef.FindSubmatch(dict); m != nil {
		if num, err := strconv.Atoi(string(m[1])); err == nil {
			refs = append(refs, num)
		}
	}
	return refs
}

// decodeStream extracts and, when Flate-compressed, inflates an object's
// stream payload.
func decodeStream(body []byte) ([]byte, error) {
	start := bytes.Index(body, []byte("stream"))
	if start < 0 {
		return nil, fmt.Errorf("object has no stream payload")
	}
	dict := body[:start]
	start += len("stream")
	if start < len(body) && body[start] == '\r' {
		start++
	}
	if start < len(body) && body[start] == '\n' {
		start++
	}
	end := bytes.LastIndex(body, []byte("endstream"))
	if end < start {
		return nil, fmt.Errorf("stream payload not terminated")
	}
	payload := streamPayload(dict, body[start:end])

	if !filterPattern.Match(dict) {
		return payload, nil
	}
	if !flatePattern.Match(dict) {
		return nil, fmt.Errorf("unsupported stream filter")
	}

	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("inflate stream: %w", err)
	}
	defer zr.Close()
	decoded, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate stream: %w", err)
	}
	return decoded, nil
}

// streamPayload bounds the stream bytes between the stream and endstream
// keywords. A direct /Length entry is authoritative. Without one, at most
// a single EOL sequence before endstream is removed: the payload's own
// trailing bytes may legitimately be CR or LF, so a greedy trim would
// truncate valid data.
func streamPayload(dict, raw []byte) []byte {
	if m := lengthPattern.FindSubmatchIndex(dict); m != nil && !indirectTail.Match(dict[m[1]:]) {
		if n, err := strconv.Atoi(string(dict[m[2]:m[3]])); err == nil && n >= 0 && n <= len(raw) {
			return raw[:n]
		}
	}
	if k := len(raw); k > 0 && raw[k-1] == '\n' {
		raw = raw[:k-1]
	}
	if k := len(raw); k > 0 && raw[k-1] == '\r' {
		raw = raw[:k-1]
	}
	return raw
}
