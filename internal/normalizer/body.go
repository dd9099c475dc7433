package normalizer

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	schemeBase64 = "base64"
	schemeUTF8   = "utf-8"
)

// bodyScheme picks how an event body is decoded: base64 when the event says
// so, else the content-encoding header, else UTF-8.
func bodyScheme(isBase64Encoded bool, contentEncoding string) string {
	if isBase64Encoded {
		return schemeBase64
	}
	if contentEncoding != "" {
		return contentEncoding
	}
	return schemeUTF8
}

// decodeBody turns an event body into raw bytes. An empty body yields nil.
// Schemes that name no text encoding, such as gzip, pass the bytes through.
func decodeBody(body string, scheme string) ([]byte, error) {
	if body == "" {
		return nil, nil
	}

	var (
		out []byte
		err error
	)
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "base64":
		out, err = decodeBase64(body)
	case "base64url":
		out, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(body, "="))
	case "hex":
		out, err = hex.DecodeString(body)
	case "latin1", "binary", "ascii":
		out = encodeLatin1(body)
	case "utf16le", "utf-16le", "ucs2", "ucs-2":
		var s string
		s, err = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(body)
		out = []byte(s)
	default:
		out = []byte(body)
	}
	if err != nil {
		return nil, &BodyDecodeError{Scheme: scheme, Err: err}
	}
	return out, nil
}

// decodeBase64 accepts padded and unpadded input in both alphabets.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")
	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// encodeLatin1 writes one byte per rune. Runes outside ISO-8859-1 keep their
// low byte instead of failing.
func encodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, byte(r))
	}
	return out
}
