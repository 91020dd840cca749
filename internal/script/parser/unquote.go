package parser

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// unquote decodes the body of a JavaScript string literal, quotes already
// removed. It reports false for escapes that module code rejects: legacy
// octal escapes and malformed hex or unicode escapes.
func unquote(s string) (string, bool) {
	if !strings.Contains(s, `\`) {
		return s, true
	}

	var b strings.Builder
	b.Grow(len(s))
	var high rune // unpaired high surrogate from a \u escape
	flush := func() {
		if high != 0 {
			b.WriteRune(utf8.RuneError)
			high = 0
		}
	}
	emit := func(r rune) {
		switch {
		case r >= 0xD800 && r < 0xDC00:
			flush()
			high = r
		case r >= 0xDC00 && r <= 0xDFFF:
			if high != 0 {
				b.WriteRune(utf16.DecodeRune(high, r))
				high = 0
			} else {
				b.WriteRune(utf8.RuneError)
			}
		default:
			flush()
			b.WriteRune(r)
		}
	}

	for i := 0; i < len(s); {
		if s[i] != '\\' {
			flush()
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
			continue
		}
		i++
		if i == len(s) {
			return "", false
		}
		c := s[i]
		i++
		switch c {
		case 'b':
			emit('\b')
		case 'f':
			emit('\f')
		case 'n':
			emit('\n')
		case 'r':
			emit('\r')
		case 't':
			emit('\t')
		case 'v':
			emit('\v')
		case '0':
			if i < len(s) && s[i] >= '0' && s[i] <= '9' {
				return "", false
			}
			emit(0)
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return "", false
		case 'x':
			r, ok := hexRune(s, i, 2)
			if !ok {
				return "", false
			}
			i += 2
			emit(r)
		case 'u':
			if i < len(s) && s[i] == '{' {
				end := strings.IndexByte(s[i:], '}')
				if end < 2 {
					return "", false
				}
				r, ok := hexRune(s, i+1, end-1)
				if !ok || r > unicode.MaxRune {
					return "", false
				}
				i += end + 1
				emit(r)
				continue
			}
			r, ok := hexRune(s, i, 4)
			if !ok {
				return "", false
			}
			i += 4
			emit(r)
		case '\n':
			// Line continuation.
		case '\r':
			if i < len(s) && s[i] == '\n' {
				i++
			}
		default:
			r, size := utf8.DecodeRuneInString(s[i-1:])
			i += size - 1
			// Line continuation.
			if r == '\u2028' || r == '\u2029' {
				continue
			}
			emit(r)
		}
	}
	flush()
	return b.String(), true
}

func hexRune(s string, i, n int) (rune, bool) {
	if n <= 0 || i+n > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(s[i : i+n]) {
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		if r > unicode.MaxRune {
			return 0, false
		}
		r = r<<4 | rune(d)
	}
	return r, true
}
