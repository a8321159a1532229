package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/textenc"
)

// TextProvider pulls the text layer out of a PDF document.
type TextProvider interface {
	Text(ctx context.Context, data []byte) (string, error)
}

// NewTextProvider selects a PDF text provider from config.
func NewTextProvider(cfg config.PDFConfig) (TextProvider, error) {
	switch cfg.Provider {
	case "internal", "":
		return &InternalProvider{}, nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("extract: unknown pdf provider %q", cfg.Provider)
	}
}

// PDFExtractor extracts a PDF's text layer and runs the unstructured
// field pipeline over it. Scanned PDFs without a text layer yield
// zero rows and a warning; there is no OCR fallback.
type PDFExtractor struct {
	provider TextProvider
}

var _ Extractor = (*PDFExtractor)(nil)

// NewPDFExtractor creates a PDFExtractor over the given provider.
func NewPDFExtractor(provider TextProvider) *PDFExtractor {
	return &PDFExtractor{provider: provider}
}

// Extract never fails: provider errors surface as a per-file warning
// with zero rows.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) *Result {
	text, err := e.provider.Text(ctx, data)
	if err != nil {
		return &Result{Warning: fmt.Sprintf("pdf text extraction failed: %v", err)}
	}
	if strings.TrimSpace(text) == "" {
		return &Result{Warning: "pdf has no extractable text layer"}
	}
	return extractText(textenc.Sanitize(text))
}
