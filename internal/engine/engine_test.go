package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/export"
	"github.com/sells-group/invoice-cli/internal/model"
)

const structuredTxt = "HTTS\tC/N\tPART\tPART_DESC\tquantity\tAMT\tWEIGHT\n" +
	"8471.30\tCN\tSKU1\tWidget\t10\t2.50\t5.0\n" +
	"8517.62\tVN\tSKU2\tRouter\t4\t30.00\t2.0\n"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	eng, err := New(&config.Config{
		Detect:    config.DetectConfig{MinStructuredColumns: 3},
		Normalize: config.NormalizeConfig{DefaultQtyUnit: "EA"},
		Pairing:   config.PairingConfig{MinSimilarity: 0.5},
		Aggregate: config.AggregateConfig{TopHTS: 10},
		PDF:       config.PDFConfig{Provider: "internal"},
		Workspace: config.WorkspaceConfig{
			UploadsDir: filepath.Join(root, "uploads"),
			OutputsDir: filepath.Join(root, "outputs"),
		},
	})
	require.NoError(t, err)
	return eng
}

func txtFile(name, content string) model.File {
	return model.File{Filename: name, Content: []byte(content)}
}

func TestProcessStructuredFile(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Process(context.Background(), []model.File{
		txtFile("shipment.txt", structuredTxt),
	}, Options{})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, 0, res.SkippedRows)
	assert.Empty(t, res.Warnings)

	first := res.Items[0]
	assert.Equal(t, "SKU1", first.SKU)
	assert.Equal(t, "8471.30", first.HTSCode)
	assert.True(t, decimal.RequireFromString("25.00").Equal(first.Value))
	assert.Equal(t, model.SourceTXT, first.Source)

	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalLines)
	assert.True(t, decimal.RequireFromString("145.00").Equal(res.Summary.TotalValue),
		"total %s", res.Summary.TotalValue)

	require.NotEmpty(t, res.CSVPath)
	data, err := os.ReadFile(res.CSVPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SKU,DESCRIPTION,HTS,"))
}

func TestProcessNoFilesFatal(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Process(context.Background(), nil, Options{})
	assert.True(t, eris.Is(err, ErrNoInput))
}

func TestProcessAllUnreadableFatal(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Process(context.Background(), []model.File{
		{Filename: "ghost.txt", Path: filepath.Join(t.TempDir(), "missing.txt")},
	}, Options{})
	assert.True(t, eris.Is(err, ErrNoInput))
}

func TestProcessPartialFailureIsWarning(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Process(context.Background(), []model.File{
		{Filename: "ghost.txt", Path: filepath.Join(t.TempDir(), "missing.txt")},
		txtFile("shipment.txt", structuredTxt),
	}, Options{NoExport: true})
	require.NoError(t, err)

	assert.Len(t, res.Items, 2)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, model.WarnInputFormat, res.Warnings[0].Kind)
	assert.Equal(t, "ghost.txt", res.Warnings[0].Filename)
}

func TestProcessInvoiceFilter(t *testing.T) {
	eng := newTestEngine(t)

	content := "invoice_nbr\tPART\tquantity\tAMT\n" +
		"INV-1\tSKU1\t1\t1.00\n" +
		"INV-2\tSKU2\t1\t1.00\n"

	res, err := eng.Process(context.Background(), []model.File{
		txtFile("multi.txt", content),
	}, Options{InvoiceNumber: "inv-1", NoExport: true})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "SKU1", res.Items[0].SKU)
	// Filtered rows are not skipped rows.
	assert.Equal(t, 0, res.SkippedRows)
}

func TestProcessSkippedRowTally(t *testing.T) {
	eng := newTestEngine(t)

	content := "HTTS\tPART\tquantity\tAMT\n" +
		"8471.30\tSKU1\t1\t1.00\n" +
		"\t\t2\t2.00\n" // no identity, dropped

	res, err := eng.Process(context.Background(), []model.File{
		txtFile("gaps.txt", content),
	}, Options{NoExport: true})
	require.NoError(t, err)

	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.SkippedRows)
}

func TestProcessCombinedTXTAuthoritative(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Process(context.Background(), []model.File{
		{Filename: "invoice_100.pdf", Content: []byte("%PDF-1.4 not really a pdf")},
		txtFile("invoice_100_data.txt", structuredTxt),
	}, Options{Combined: true, NoExport: true})
	require.NoError(t, err)

	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "invoice_100.pdf", res.Pairs[0].PDF.Filename)

	// The broken PDF contributes nothing; TXT rows carry the merge.
	require.Len(t, res.Items, 2)
	for _, item := range res.Items {
		assert.Equal(t, model.SourceCombined, item.Source)
	}

	var kinds []model.WarningKind
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, model.WarnExtraction)
}

func TestProcessCombinedUnpairedPDFWarns(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Process(context.Background(), []model.File{
		{Filename: "lonely_999.pdf", Content: []byte("%PDF-1.4 broken")},
		txtFile("unrelated_totally.txt", structuredTxt),
	}, Options{Combined: true, NoExport: true})
	require.NoError(t, err)

	assert.Empty(t, res.Pairs)
	assert.Len(t, res.Unmatched, 2)

	var kinds []model.WarningKind
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, model.WarnPairing)

	// The unmatched TXT is still processed standalone.
	assert.Len(t, res.Items, 2)
}

func TestProcessBySKU(t *testing.T) {
	eng := newTestEngine(t)

	content := "PART\tquantity\tAMT\n" +
		"SKU1\t2\t3.00\n" +
		"SKU1\t3\t3.00\n"

	res, err := eng.Process(context.Background(), []model.File{
		txtFile("dupes.txt", content),
	}, Options{BySKU: true, NoExport: true})
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.True(t, decimal.RequireFromString("5").Equal(res.Items[0].Quantity))
	assert.True(t, decimal.RequireFromString("15.00").Equal(res.Items[0].Value))
}

func TestProcessXLSXExport(t *testing.T) {
	eng := newTestEngine(t)

	res, err := eng.Process(context.Background(), []model.File{
		txtFile("shipment.txt", structuredTxt),
	}, Options{Format: export.FormatXLSX})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.CSVPath, ".xlsx"), res.CSVPath)
	_, err = os.Stat(res.CSVPath)
	assert.NoError(t, err)
}

func TestPreview(t *testing.T) {
	eng := newTestEngine(t)

	many := "PART\tquantity\tAMT\n"
	for i := 0; i < 8; i++ {
		many += "SKU\t1\t1.00\n"
	}

	res, err := eng.Preview(context.Background(), txtFile("big.txt", many))
	require.NoError(t, err)

	assert.Equal(t, model.FormatStructuredText, res.Format)
	assert.Equal(t, []string{"PART", "quantity", "AMT"}, res.Columns)
	assert.Len(t, res.SampleRows, 5)
}

func TestPreviewUnreadable(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Preview(context.Background(), model.File{
		Filename: "nope.txt",
		Path:     filepath.Join(t.TempDir(), "nope.txt"),
	})
	assert.Error(t, err)
}

func TestResolvePairsExposed(t *testing.T) {
	eng := newTestEngine(t)

	res := eng.ResolvePairs([]model.File{
		{Filename: "invoice_100.pdf"},
		{Filename: "invoice_100_data.txt"},
	})
	require.Len(t, res.Pairs, 1)
}
