package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphaNum = regexp.MustCompile(`[^\p{L}\p{M}\p{N}]+`)
	stripMarks  = transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
)

// Make lowercases input, strips Latin accents and joins words with hyphens.
// Letters of other scripts are kept so Devanagari titles still get a slug.
func Make(input string) string {
	s, _, err := transform.String(stripMarks, strings.TrimSpace(input))
	if err != nil {
		s = strings.TrimSpace(input)
	}
	s = strings.ToLower(s)
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

func isMn(r rune) bool {
	// Devanagari vowel signs are Mn too; dropping them would mangle words.
	if unicode.Is(unicode.Devanagari, r) {
		return false
	}
	return unicode.Is(unicode.Mn, r)
}
