package marshaller

import "strings"

// SplitCookiesString separates a combined Set-Cookie value into individual
// cookies.
//
// A comma starts a new cookie only when the text after it, up to the next
// '=', ';' or ',', is followed by '='. Commas inside attributes such as
// "Expires=Wed, 21 Oct 2015 07:28:00 GMT" therefore stay in place. A value
// that already holds one cookie is returned unchanged.
func SplitCookiesString(s string) []string {
	var cookies []string
	n := len(s)
	pos := 0

	skipSpace := func() bool {
		for pos < n && isSpace(s[pos]) {
			pos++
		}
		return pos < n
	}

	for pos < n {
		start := pos
		for skipSpace() {
			if s[pos] != ',' {
				pos++
				continue
			}

			lastComma := pos
			pos++
			skipSpace()
			nextStart := pos
			for pos < n && s[pos] != '=' && s[pos] != ';' && s[pos] != ',' {
				pos++
			}

			if pos < n && s[pos] == '=' {
				cookies = appendCookie(cookies, s[start:lastComma])
				pos = nextStart
				start = pos
			} else {
				pos = lastComma + 1
			}
		}
		cookies = appendCookie(cookies, s[start:])
	}
	return cookies
}

func appendCookie(cookies []string, c string) []string {
	if c = strings.TrimSpace(c); c != "" {
		cookies = append(cookies, c)
	}
	return cookies
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
