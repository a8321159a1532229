package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// InternalProvider reads a PDF's text layer in-process, page by page
// in document order.
type InternalProvider struct{}

var _ TextProvider = (*InternalProvider)(nil)

// Text concatenates the text of every page. Unreadable pages are
// skipped so one bad page does not lose the document.
func (p *InternalProvider) Text(ctx context.Context, data []byte) (text string, err error) {
	// The upstream parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("extract: pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrap(err, "extract: open pdf")
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "extract: pdf read cancelled")
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
				sb.WriteString(" ")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
