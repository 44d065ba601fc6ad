package services

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizeHeader canonicalizes one column name.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// NormalizeRow canonicalizes a raw column name -> raw value mapping:
// keys lowercased and trimmed, values trimmed, the "ignore" column
// dropped. Total for any input.
func NormalizeRow(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		k = NormalizeHeader(k)
		if k == "ignore" || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Latin1Reader re-encodes a Latin-1 byte stream as UTF-8. Every byte has
// a mapping in ISO 8859-1, so the conversion never fails for any input.
func Latin1Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

// DecodeLatin1 converts a Latin-1 byte slice to a UTF-8 string.
func DecodeLatin1(b []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// Unreachable: ISO 8859-1 maps all 256 byte values.
		return string(b)
	}
	return string(decoded)
}
