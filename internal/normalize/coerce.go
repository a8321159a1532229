package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// numberCleaner strips currency symbols, thousands separators, and
// inner whitespace that supplier exports wrap around numeric cells.
var numberCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// trimQuotes removes surrounding quotes and whitespace from a cell.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// parseDecimalOr parses a numeric cell into an exact decimal. Missing,
// unparsable, or negative values yield def: absent numeric data
// defaults to zero rather than failing the row.
func parseDecimalOr(s string, def decimal.Decimal) decimal.Decimal {
	cleaned := numberCleaner.Replace(trimQuotes(s))
	if cleaned == "" {
		return def
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

// parseCountOr parses an integer count cell, accepting decimal
// renditions like "5.0". Fractions truncate toward zero.
func parseCountOr(s string, def int) int {
	d := parseDecimalOr(s, decimal.NewFromInt(int64(def)))
	return int(d.IntPart())
}
