package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodePlainUTF8(t *testing.T) {
	assert.Equal(t, "HTTS\tPART\tAMT", Decode([]byte("HTTS\tPART\tAMT")))
}

func TestDecodeUTF8BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("invoice")...)
	assert.Equal(t, "invoice", Decode(in))
}

func TestDecodeUTF16LE(t *testing.T) {
	// "AB\tC" with a little-endian BOM.
	in := []byte{0xFF, 0xFE, 'A', 0x00, 'B', 0x00, '\t', 0x00, 'C', 0x00}
	assert.Equal(t, "AB\tC", Decode(in))
}

func TestDecodeUTF16BE(t *testing.T) {
	in := []byte{0xFE, 0xFF, 0x00, 'A', 0x00, 'B'}
	assert.Equal(t, "AB", Decode(in))
}

func TestDecodeWindows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 and invalid UTF-8.
	in := []byte{0x93, 'W', 'i', 'd', 'g', 'e', 't', 0x94}
	assert.Equal(t, "“Widget”", Decode(in))
}

func TestDecodeLatin1Accents(t *testing.T) {
	// 0xE9 is é in both Windows-1252 and Latin-1.
	in := []byte{'M', 0xE9, 'x', 'i', 'c', 'o'}
	assert.Equal(t, "México", Decode(in))
}

func TestDecodeEmpty(t *testing.T) {
	assert.Equal(t, "", Decode(nil))
	assert.Equal(t, "", Decode([]byte{}))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc", Sanitize("ab\xffc"))
	assert.Equal(t, "clean", Sanitize("clean"))
}
