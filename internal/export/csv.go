// Package export serializes a canonical line-item collection to the
// customs reporting formats: the fixed-column CSV and an XLSX
// rendition of the same table.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/invoice-cli/internal/model"
)

// Format selects the output rendition.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a caller-supplied format name. Empty means
// CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Ext returns the filename extension for the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// csvRow is the canonical export row. Struct order is the contract:
// the emitted header and column order follow these fields exactly and
// must stay byte-stable across runs.
type csvRow struct {
	SKU             string `csv:"SKU"`
	Description     string `csv:"DESCRIPTION"`
	HTS             string `csv:"HTS"`
	CountryOfOrigin string `csv:"COUNTRY OF ORIGIN"`
	PackageCount    int    `csv:"NO. OF PACKAGE"`
	Quantity        string `csv:"QUANTITY"`
	NetWeight       string `csv:"NET WEIGHT"`
	GrossWeight     string `csv:"GROSS WEIGHT"`
	UnitPrice       string `csv:"UNIT PRICE"`
	Value           string `csv:"VALUE"`
	QtyUnit         string `csv:"QTY UNIT"`
}

// Columns lists the export header in emitted order.
var Columns = []string{
	"SKU", "DESCRIPTION", "HTS", "COUNTRY OF ORIGIN", "NO. OF PACKAGE",
	"QUANTITY", "NET WEIGHT", "GROSS WEIGHT", "UNIT PRICE", "VALUE", "QTY UNIT",
}

// toRow renders one line item at export precision: money and weight
// at two decimals, counts as integers, quantity at its source scale.
func toRow(item model.LineItem) csvRow {
	return csvRow{
		SKU:             item.SKU,
		Description:     item.Description,
		HTS:             item.HTSCode,
		CountryOfOrigin: item.CountryOfOrigin,
		PackageCount:    item.PackageCount,
		Quantity:        item.Quantity.String(),
		NetWeight:       item.NetWeightKg.StringFixed(2),
		GrossWeight:     item.GrossWeightKg.StringFixed(2),
		UnitPrice:       item.UnitPrice.StringFixed(2),
		Value:           item.Value.StringFixed(2),
		QtyUnit:         item.QtyUnit,
	}
}

// WriteCSV writes the items to w in collection order. Rows are never
// re-sorted; output order is the caller's order.
func WriteCSV(w io.Writer, items []model.LineItem) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	for _, item := range items {
		if err := enc.Encode(toRow(item)); err != nil {
			return eris.Wrap(err, "export: encode csv row")
		}
	}
	if len(items) == 0 {
		// Encode is header-on-first-row; an empty collection still
		// gets the header line.
		if err := enc.EncodeHeader(csvRow{}); err != nil {
			return eris.Wrap(err, "export: encode csv header")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// Filename builds the timestamped output name, optionally carrying
// the invoice number: invoice_items_INV123_20060102_150405.csv.
func Filename(invoiceNumber string, format Format, now time.Time) string {
	name := "invoice_items_"
	if invoiceNumber != "" {
		name += sanitizeName(invoiceNumber) + "_"
	}
	return name + now.Format("20060102_150405") + format.Ext()
}

// sanitizeName keeps invoice numbers filesystem-safe.
func sanitizeName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// WriteFile writes items to path in the given format.
func WriteFile(path string, items []model.LineItem, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create output file")
	}
	defer f.Close()

	switch format {
	case FormatXLSX:
		err = WriteXLSX(f, items)
	default:
		err = WriteCSV(f, items)
	}
	if err != nil {
		return err
	}
	return eris.Wrap(f.Close(), "export: close output file")
}
