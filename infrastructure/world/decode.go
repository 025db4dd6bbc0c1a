package world

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts raw world bytes to text.
//
// A UTF-8 byte order mark is stripped. A UTF-16 byte order mark (either
// endianness) switches decoding to UTF-16. Input without a BOM that is not
// valid UTF-8 is retried as little-endian UTF-16.
func Decode(data []byte) (string, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode world: %w", err)
	}
	if hasBOM(data) || utf8.Valid(data) {
		return string(text), nil
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	text, _, err = transform.Bytes(utf16.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode world as UTF-16: %w", err)
	}
	return string(text), nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF8) ||
		bytes.HasPrefix(data, bomUTF16LE) ||
		bytes.HasPrefix(data, bomUTF16BE)
}
