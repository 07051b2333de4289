package projector

import (
	"strings"
	"unicode"
)

// maxCodeLen is the longest label treated as a code (ISO 639 codes are 2-3 letters).
const maxCodeLen = 3

// NormalizeLabel turns separators (underscore, hyphen, dot) into spaces and
// collapses whitespace. Natural case is kept.
func NormalizeLabel(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCode normalizes a language code: short alphabetic codes are
// uppercased ("hi" -> "HI", "pt_br" -> "PT BR"), longer values such as
// "others" keep natural case.
func NormalizeCode(s string) string {
	s = NormalizeLabel(s)
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return s
	}
	for _, p := range parts {
		if !isShortCode(p) {
			return s
		}
	}
	return strings.ToUpper(s)
}

func isShortCode(s string) bool {
	if s == "" || len(s) > maxCodeLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
