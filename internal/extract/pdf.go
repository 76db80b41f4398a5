package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/pdfpage"
	"github.com/softcover/softcover/pkg/types"
)

// PDFExtractor indexes page-oriented documents. Page markup itself is
// reconstructed on demand via RenderPage, so Extract only reports the
// navigable page count.
type PDFExtractor struct {
	tolerance float64
	logger    *zap.Logger
}

// NewPDFExtractor creates an extractor for page-oriented documents using
// the given line-grouping tolerance.
func NewPDFExtractor(tolerance float64, logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{tolerance: tolerance, logger: logger}
}

// Extract validates the document and reports its page count.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (*types.ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := pdfpage.Load(data)
	if err != nil {
		return nil, err
	}
	return &types.ExtractResult{TotalPages: doc.PageCount()}, nil
}

// RenderPage reconstructs the markup of the 1-based page pageNum. Each
// call re-opens the document from the raw bytes; nothing is cached
// between requests.
func (e *PDFExtractor) RenderPage(ctx context.Context, data []byte, pageNum int) (*types.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := pdfpage.Load(data)
	if err != nil {
		return nil, err
	}
	runs, height, err := doc.Runs(pageNum)
	if err != nil {
		return nil, err
	}

	r := pdfpage.NewReconstructor(e.tolerance)
	return &types.Page{
		PageNumber: pageNum,
		Content:    r.PageMarkup(runs, height),
	}, nil
}

// SupportedFormats returns the formats this extractor supports.
func (e *PDFExtractor) SupportedFormats() []string {
	return []string{"pdf"}
}
