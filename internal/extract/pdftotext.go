package extract

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PdfToText extracts text by shelling out to the pdftotext CLI tool,
// for deployments that prefer poppler's layout handling.
type PdfToText struct {
	binPath string
}

var _ TextProvider = (*PdfToText)(nil)

// NewPdfToText creates a PdfToText provider. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// Text writes the document to a temp file and runs pdftotext -layout
// on it, returning stdout.
func (p *PdfToText) Text(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "invoice-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "extract: create temp pdf")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "extract: write temp pdf")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "extract: close temp pdf")
	}

	cmd := exec.CommandContext(ctx, p.binPath, "-layout", tmp.Name(), "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "extract: pdftotext failed: %s", stderr.String())
	}
	return stdout.String(), nil
}
