package raw

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

var utf16BOM = []byte{0xFE, 0xFF}

// Text decodes a PDF text string. Strings starting with the UTF-16BE byte
// order mark are decoded as UTF-16; all other strings are returned as is,
// which is correct for the ASCII subset of PDFDocEncoding.
func (s StringObj) Text() string {
	if !bytes.HasPrefix(s.Bytes, utf16BOM) {
		return string(s.Bytes)
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(s.Bytes)
	if err != nil {
		return string(s.Bytes)
	}
	return string(out)
}
