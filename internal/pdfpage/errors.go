package pdfpage

import "errors"

// Sentinel errors returned by the page-oriented pipeline.
var (
	// ErrDocumentLoadFailed indicates the document cannot be opened at all
	// (not a PDF, encrypted, or no page objects found). Surfaced to the
	// caller as user-visible.
	ErrDocumentLoadFailed = errors.New("pdfpage: document load failed")

	// ErrPageUnreadable indicates a single page's content stream cannot be
	// decoded. Other pages of the same document remain readable.
	ErrPageUnreadable = errors.New("pdfpage: page content not readable")
)
