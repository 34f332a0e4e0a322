package passwd

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// utf16Bytes codifica el password como UTF-16 little-endian sin BOM, el
// layout de bytes que usaban los sistemas de origen.
func utf16Bytes(s string) []byte {
	b, err := utf16le.Bytes([]byte(s))
	if err != nil {
		// La codificación de un string Go válido a UTF-16 no falla.
		return nil
	}
	return b
}
