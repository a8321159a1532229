package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/textenc"
)

// fieldPatterns are tried in order per canonical field; the first
// match anywhere in the text wins. Because fields are matched
// independently rather than row-by-row, unstructured extraction
// yields at most one raw row per document — free text carries no
// reliable row delimiter.
var fieldPatterns = []struct {
	field    string
	patterns []*regexp.Regexp
}{
	{model.FieldInvoiceNumber, []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{3,}[A-Z]-\d{8,})\b`),
		regexp.MustCompile(`\b(\d{3,}[A-Z]\d{8,})\b`),
		regexp.MustCompile(`(?i)\bINVOICE\s*(?:NO\.?|NUMBER|NBR|#)?\s*[:#]\s*([A-Z0-9][A-Z0-9-]{2,})`),
	}},
	{model.FieldSKU, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:PART|SKU)\s*(?:NO\.?|NUMBER|#)?\s*[:=#]\s*([A-Z0-9][A-Z0-9/_-]*)`),
		regexp.MustCompile(`(?i)\bP/N\s*[:=]?\s*([A-Z0-9][A-Z0-9/_-]*)`),
	}},
	{model.FieldDescription, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:DESCRIPTION|DESC)\s*[:=]\s*([^\n\r\t]{1,80})`),
	}},
	{model.FieldHTSCode, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bHTT?S\s*(?:CODE|NO\.?|#)?\s*[:=]?\s*([0-9]{4}(?:\.[0-9]{2,4}){1,3})`),
		regexp.MustCompile(`\b([0-9]{4}\.[0-9]{2}\.[0-9]{2}(?:\.[0-9]{2})?)\b`),
	}},
	{model.FieldCountryOfOrigin, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bC/N\s*[:=]?\s*([A-Z]{2,3})\b`),
		regexp.MustCompile(`(?i)\bCOUNTRY\s+OF\s+ORIGIN\s*[:=]?\s*([^\n\r]+)`),
		regexp.MustCompile(`(?i)\bORIGIN\s*[:=]\s*([^\n\r]+)`),
	}},
	{model.FieldPackageCount, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bNO\.?\s+OF\s+PACKAGES?\s*[:=]?\s*([0-9]+)`),
		regexp.MustCompile(`(?i)\bPACKAGES?\s*[:=]\s*([0-9]+)`),
	}},
	{model.FieldQuantity, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:QTY|QUANTITY)\s*[:=]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}},
	{model.FieldNetWeightKg, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bNET\s+WEIGHT\s*(?:\(?\s*KGS?\s*\)?)?\s*[:=]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
		regexp.MustCompile(`(?im)^[ \t]*WEIGHT\s*[:=]\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}},
	{model.FieldGrossWeightKg, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bGROSS\s+WEIGHT\s*(?:\(?\s*KGS?\s*\)?)?\s*[:=]?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}},
	{model.FieldUnitPrice, []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:UNIT\s+PRICE|PRICE|AMT)\s*[:=]?\s*\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`),
	}},
}

// UnstructuredExtractor pulls labeled fields out of free-form text.
type UnstructuredExtractor struct{}

var _ Extractor = (*UnstructuredExtractor)(nil)

// NewUnstructuredExtractor creates an UnstructuredExtractor.
func NewUnstructuredExtractor() *UnstructuredExtractor {
	return &UnstructuredExtractor{}
}

// Extract decodes the text and runs the field pattern pipeline.
func (e *UnstructuredExtractor) Extract(ctx context.Context, data []byte) *Result {
	return extractText(textenc.Sanitize(textenc.Decode(data)))
}

// extractText applies the field patterns to already-decoded text.
// The PDF extractor shares this path.
func extractText(text string) *Result {
	res := &Result{}
	row := model.RawRow{}

	for _, fp := range fieldPatterns {
		if v := findFirst(fp.patterns, text); v != "" {
			row[fp.field] = v
			res.Columns = append(res.Columns, fp.field)
		}
	}

	if len(row) == 0 {
		res.Warning = "no recognizable fields in text"
		return res
	}
	res.Rows = []model.RawRow{row}
	return res
}

// findFirst returns the first submatch of the first pattern that hits.
func findFirst(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
