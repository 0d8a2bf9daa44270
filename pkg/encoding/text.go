// Package encoding converts hand-edited text files to UTF-8.
package encoding

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF}, // UTF-8
	{0xFE, 0xFF},       // UTF-16BE
	{0xFF, 0xFE},       // UTF-16LE
}

// HasBOM reports whether data starts with a UTF-8 or UTF-16 byte order mark.
func HasBOM(data []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}

// ToUTF8 returns data as UTF-8 without a byte order mark.
// A BOM selects UTF-8 or UTF-16. Input without a BOM that is not valid UTF-8
// is decoded as Windows-1252.
func ToUTF8(data []byte) ([]byte, error) {
	var dec transform.Transformer
	switch {
	case HasBOM(data):
		dec = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case utf8.Valid(data):
		return data, nil
	default:
		dec = charmap.Windows1252.NewDecoder()
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	return out, nil
}
