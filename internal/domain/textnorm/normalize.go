// Package textnorm canonicalizes free-form skill and requirement strings into
// comparable tokens.
//
// All functions are pure and total: any input string, including the empty
// string, yields a result. Nothing is cached between calls.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// accentBase is the fixed fold table for accented Latin letters. Only these
// classes are folded; other diacritics are left to Clean, which drops them.
var accentBase = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c',
	'ñ': 'n',
}

var foldAccents = runes.Map(func(r rune) rune {
	if base, ok := accentBase[r]; ok {
		return base
	}
	return r
})

var (
	disallowed = regexp.MustCompile(`[^a-z0-9+#./ ]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Deaccent lowercases s and folds accented vowels, ç and ñ to their base letter.
func Deaccent(s string) string {
	out, _, err := transform.String(foldAccents, strings.ToLower(s))
	if err != nil {
		// runes.Map never fails on valid input; fall back to the lowercase text.
		return strings.ToLower(s)
	}
	return out
}

// Clean deaccents s and replaces every run of characters other than
// lowercase letters, digits, '+', '#', '.', '/' and space with a single space.
// Whitespace is collapsed and the ends are trimmed.
func Clean(s string) string {
	s = disallowed.ReplaceAllString(Deaccent(s), " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Canonize cleans term, turns every '.' into a word break, and substitutes the
// canonical synonym when the result is an exact key of the synonym table.
//
// "Node.js" and "node js" both end up as "node js"; "NodeJS" becomes "node".
func Canonize(term string) string {
	t := strings.ReplaceAll(Clean(term), ".", " ")
	t = strings.Join(strings.Fields(t), " ")
	return Lookup(t)
}
