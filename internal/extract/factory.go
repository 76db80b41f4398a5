package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/sanitize"
)

// DefaultFactory creates extractors for the supported formats.
type DefaultFactory struct {
	extractors map[string]Extractor
}

// NewFactory builds a factory with the two supported pipelines wired in.
func NewFactory(sanitizer *sanitize.Sanitizer, lineTolerance float64, logger *zap.Logger) Factory {
	f := &DefaultFactory{
		extractors: make(map[string]Extractor),
	}

	f.register(NewEPUBExtractor(sanitizer, logger))
	f.register(NewPDFExtractor(lineTolerance, logger))

	return f
}

// register indexes an extractor under each of its supported formats.
func (f *DefaultFactory) register(e Extractor) {
	for _, format := range e.SupportedFormats() {
		f.extractors[strings.ToLower(format)] = e
	}
}

// GetExtractor returns the extractor for the given format.
func (f *DefaultFactory) GetExtractor(format string) (Extractor, error) {
	e, ok := f.extractors[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return e, nil
}
