// Package textenc decodes text-file bytes of unknown encoding into
// UTF-8 strings. Invoice text files arrive as UTF-8, Windows-1252,
// Latin-1, or BOM-tagged UTF-16 depending on the exporting system.
package textenc

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw text bytes to a UTF-8 string. The chain is:
// BOM-tagged UTF-8/UTF-16, then valid UTF-8 as-is, then Windows-1252,
// then Latin-1. Decode never fails; undecodable bytes degrade to
// replacement characters rather than aborting the parse.
func Decode(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF8):
		return string(bytes.TrimPrefix(b, bomUTF8))
	case bytes.HasPrefix(b, bomUTF16LE), bytes.HasPrefix(b, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(b); err == nil {
			return string(out)
		}
	}

	if utf8.Valid(b) {
		return string(b)
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil {
		return string(out)
	}
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(out)
}

// Sanitize strips invalid UTF-8 sequences from already-decoded text,
// as PDF text layers sometimes carry broken escapes.
func Sanitize(s string) string {
	return strings.ToValidUTF8(s, "")
}
