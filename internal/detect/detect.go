// Package detect classifies input files into the closed set of
// extraction formats the engine understands.
package detect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/textenc"
)

// KnownColumnFunc reports whether a header token is a recognized
// line-item column name. The engine wires in the alias table here.
type KnownColumnFunc func(string) bool

// Detector classifies input files by extension and content sniffing.
type Detector struct {
	minColumns int
	known      KnownColumnFunc
}

// NewDetector creates a Detector. known must not be nil.
func NewDetector(cfg config.DetectConfig, known KnownColumnFunc) *Detector {
	return &Detector{minColumns: cfg.MinStructuredColumns, known: known}
}

var pdfMagic = []byte("%PDF-")

// Detect returns exactly one format for the file. Detection never
// fails: anything that is not a PDF, a CSV, or tab-structured text
// falls back to unstructured text, deferring failure to extraction.
func (d *Detector) Detect(filename string, sample []byte) model.Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return model.FormatPDFText
	case ".csv":
		return model.FormatCSV
	}

	if bytes.HasPrefix(sample, pdfMagic) {
		return model.FormatPDFText
	}
	if d.isStructured(textenc.Decode(sample)) {
		return model.FormatStructuredText
	}
	return model.FormatUnstructuredText
}

// isStructured checks for a tab-delimited header line carrying at
// least minColumns recognized column names, followed by at least one
// tab-delimited data line.
func (d *Detector) isStructured(text string) bool {
	lines := strings.Split(text, "\n")

	header := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			header = i
			break
		}
	}
	if header < 0 || !strings.Contains(lines[header], "\t") {
		return false
	}

	recognized := 0
	for _, tok := range strings.Split(lines[header], "\t") {
		if d.known(strings.TrimSpace(tok)) {
			recognized++
		}
	}
	if recognized < d.minColumns {
		return false
	}

	for _, line := range lines[header+1:] {
		if strings.TrimSpace(line) != "" && strings.Contains(line, "\t") {
			return true
		}
	}
	return false
}
