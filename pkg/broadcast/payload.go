package broadcast

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// EncodeNarrow returns s as a NUL terminated Windows-1252 string.
func EncodeNarrow(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errors.Errorf("area %q contains a NUL byte", s)
	}
	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %q as an 8-bit string", s)
	}
	return append(b, 0), nil
}

// EncodeWide returns s as a NUL terminated UTF-16 string.
func EncodeWide(s string) ([]uint16, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errors.Errorf("area %q contains a NUL byte", s)
	}
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %q as a wide string", s)
	}
	u16 := make([]uint16, len(b)/2+1)
	for i := 0; i+1 < len(b); i += 2 {
		u16[i/2] = uint16(b[i]) | uint16(b[i+1])<<8
	}
	return u16, nil
}
