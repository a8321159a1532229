package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/invoice-cli/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleItems() []model.LineItem {
	return []model.LineItem{
		{
			SKU:             "SKU1",
			Description:     "Widget, small",
			HTSCode:         "8471.30",
			CountryOfOrigin: "CN",
			PackageCount:    2,
			Quantity:        dec("10"),
			NetWeightKg:     dec("5.0"),
			GrossWeightKg:   dec("5.5"),
			UnitPrice:       dec("2.50"),
			Value:           dec("25.00"),
			QtyUnit:         "EA",
		},
		{
			SKU:     "SKU2",
			QtyUnit: "EA",
		},
	}
}

func TestWriteCSVHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleItems()))

	want := "SKU,DESCRIPTION,HTS,COUNTRY OF ORIGIN,NO. OF PACKAGE,QUANTITY,NET WEIGHT,GROSS WEIGHT,UNIT PRICE,VALUE,QTY UNIT\n" +
		"SKU1,\"Widget, small\",8471.30,CN,2,10,5.00,5.50,2.50,25.00,EA\n" +
		"SKU2,,,,0,0,0.00,0.00,0.00,0.00,EA\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteCSV(&a, sampleItems()))
	require.NoError(t, WriteCSV(&b, sampleItems()))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteCSVEmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	assert.Equal(t, "SKU,DESCRIPTION,HTS,COUNTRY OF ORIGIN,NO. OF PACKAGE,QUANTITY,NET WEIGHT,GROSS WEIGHT,UNIT PRICE,VALUE,QTY UNIT\n", buf.String())
}

func TestWriteCSVPreservesOrder(t *testing.T) {
	items := []model.LineItem{
		{SKU: "ZZZ", QtyUnit: "EA"},
		{SKU: "AAA", QtyUnit: "EA"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, items))

	zzz := bytes.Index(buf.Bytes(), []byte("ZZZ"))
	aaa := bytes.Index(buf.Bytes(), []byte("AAA"))
	assert.Less(t, zzz, aaa, "rows must keep input order")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleItems()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "SKU", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "SKU1", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "25.00", sheet.Rows[1].Cells[9].Value)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "invoice_items_20260829_103000.csv", Filename("", FormatCSV, at))
	assert.Equal(t, "invoice_items_INV-1_20260829_103000.xlsx", Filename("INV-1", FormatXLSX, at))
	assert.Equal(t, "invoice_items_A_B_20260829_103000.csv", Filename("A/B", FormatCSV, at))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, sampleItems(), FormatCSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SKU1")
}
