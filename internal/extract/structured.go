package extract

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/textenc"
)

// StructuredExtractor parses delimiter-separated text with a header
// line into one raw row per data line. Rows whose token count does
// not match the header are skipped and tallied, not fatal.
type StructuredExtractor struct {
	comma rune
}

var _ Extractor = (*StructuredExtractor)(nil)

// NewStructuredExtractor parses tab-delimited supplier text exports.
func NewStructuredExtractor() *StructuredExtractor {
	return &StructuredExtractor{comma: '\t'}
}

// NewCSVExtractor parses comma-separated files.
func NewCSVExtractor() *StructuredExtractor {
	return &StructuredExtractor{comma: ','}
}

// Extract reads the file line-by-line. The first record with any
// non-empty token becomes the header; every later record maps
// header token → cell value.
func (e *StructuredExtractor) Extract(ctx context.Context, data []byte) *Result {
	r := csv.NewReader(strings.NewReader(textenc.Decode(data)))
	r.Comma = e.comma
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	res := &Result{}
	var header []string

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Skipped++
			continue
		}
		if isBlankRecord(record) {
			continue
		}

		if header == nil {
			header = cleanTokens(record)
			res.Columns = header
			continue
		}
		if len(record) != len(header) {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, mapRecord(header, record))
	}

	if len(res.Rows) == 0 {
		res.Warning = "no data rows extracted"
	}
	return res
}

// isBlankRecord reports whether every cell is empty or whitespace.
func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanTokens trims whitespace and stray quotes from header tokens.
func cleanTokens(record []string) []string {
	out := make([]string, len(record))
	for i, tok := range record {
		out[i] = strings.Trim(strings.TrimSpace(tok), `"'`)
	}
	return out
}

// mapRecord builds a raw row from header names and cells. Cells under
// an unnamed header column are dropped; for duplicated header names
// the first column wins.
func mapRecord(header, record []string) model.RawRow {
	row := make(model.RawRow, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, exists := row[name]; exists {
			continue
		}
		row[name] = strings.TrimSpace(record[i])
	}
	return row
}
