package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/invoice-cli/internal/model"
)

// WriteXLSX writes the items as a single-sheet workbook with the same
// columns and rendered values as the CSV export.
func WriteXLSX(w io.Writer, items []model.LineItem) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Line Items")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().Value = col
	}

	for _, item := range items {
		r := toRow(item)
		row := sheet.AddRow()
		row.AddCell().Value = r.SKU
		row.AddCell().Value = r.Description
		row.AddCell().Value = r.HTS
		row.AddCell().Value = r.CountryOfOrigin
		row.AddCell().SetInt(r.PackageCount)
		row.AddCell().Value = r.Quantity
		row.AddCell().Value = r.NetWeight
		row.AddCell().Value = r.GrossWeight
		row.AddCell().Value = r.UnitPrice
		row.AddCell().Value = r.Value
		row.AddCell().Value = r.QtyUnit
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}
