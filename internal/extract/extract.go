// Package extract turns raw file bytes into raw rows, one extractor
// per detected format. Extraction is total: malformed input degrades
// to skipped rows or a per-file warning, never an error.
package extract

import (
	"context"

	"github.com/sells-group/invoice-cli/internal/model"
)

// Result is one file's extraction outcome.
type Result struct {
	// Columns lists header names in input order, for previews.
	Columns []string
	// Rows holds the extracted raw rows in input order.
	Rows []model.RawRow
	// Skipped counts structured rows dropped for a token-count
	// mismatch against the header.
	Skipped int
	// Warning is set when the file yielded zero rows abnormally.
	Warning string
}

// Extractor turns one file's content into raw rows.
type Extractor interface {
	Extract(ctx context.Context, data []byte) *Result
}

// Set holds one extractor per format.
type Set struct {
	structured   Extractor
	csv          Extractor
	unstructured Extractor
	pdf          Extractor
}

// NewSet builds the format extractors around the given PDF text
// provider.
func NewSet(provider TextProvider) *Set {
	return &Set{
		structured:   NewStructuredExtractor(),
		csv:          NewCSVExtractor(),
		unstructured: NewUnstructuredExtractor(),
		pdf:          NewPDFExtractor(provider),
	}
}

// ForFormat returns the extractor for a detected format. The format
// set is closed; anything unrecognized dispatches to unstructured.
func (s *Set) ForFormat(f model.Format) Extractor {
	switch f {
	case model.FormatStructuredText:
		return s.structured
	case model.FormatCSV:
		return s.csv
	case model.FormatPDFText:
		return s.pdf
	default:
		return s.unstructured
	}
}
