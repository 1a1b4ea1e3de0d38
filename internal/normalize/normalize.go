package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of text: lower-cased, with every rune
// that is not a letter, number or whitespace removed. Whitespace is kept as-is.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Compose first so decomposed diacritics are not stripped as marks.
	composed := norm.NFC.String(text)
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, composed)
	return norm.NFC.String(filtered)
}
