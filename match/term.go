package match

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Runes that may continue a word. A term only matches where the runes on
// either side of it are not word runes.
const wordRunes = `\p{L}\p{M}\p{N}_`

// wordPattern compiles a case-insensitive pattern matching term as a whole word.
// Submatch 1 spans the term itself.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^` + wordRunes + `])(` +
		regexp.QuoteMeta(term) + `)(?:[^` + wordRunes + `]|$)`)
}

// isWordRune reports whether r is one of wordRunes.
func isWordRune(r rune) bool {
	return r == '_' || unicode.In(r, unicode.L, unicode.M, unicode.N)
}

// Ratio returns the similarity of a and b as a percentage in [0, 100]
// computed from their Levenshtein distance over runes.
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * float64(longest-d) / float64(longest)
}

// similarEnough reports whether Ratio(a, b) >= threshold without
// floating point rounding at the boundary.
func similarEnough(a, b string, threshold int) bool {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return true
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100*(longest-d) >= threshold*longest
}

// anyTokenSimilar reports whether term is similar enough to any of tokens.
// Both term and tokens must already be lowercase.
func anyTokenSimilar(tokens []string, term string, threshold int) bool {
	for _, token := range tokens {
		if similarEnough(term, token, threshold) {
			return true
		}
	}
	return false
}

func lowerFields(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
