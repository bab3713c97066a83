// Package textnorm holds the string normalization primitives shared by
// lexicon matching and description parsing.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer transforms a string before comparison.
type Normalizer func(string) string

// zeroWidth covers the invisible runes shop editors leave in copied text.
var zeroWidth = runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
})

var foldWidth = transform.Chain(norm.NFKC, runes.Remove(zeroWidth))

// FoldWidth applies NFKC compatibility folding (full-width to half-width,
// ideographic space to space) and drops zero-width runes.
func FoldWidth(s string) string {
	result, _, err := transform.String(foldWidth, s)
	if err != nil {
		return norm.NFKC.String(s)
	}
	return result
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Canonicalize width-folds, trims, lowercases and collapses whitespace.
// It is idempotent.
func Canonicalize(s string) string {
	if s == "" {
		return ""
	}
	return CollapseSpace(strings.ToLower(FoldWidth(s)))
}

// IsCJK reports whether r is in the CJK Unified Ideographs block.
func IsCJK(r rune) bool {
	return r >= '\u4e00' && r <= '\u9fff'
}

// HasCJK reports whether s contains a CJK unified ideograph.
func HasCJK(s string) bool {
	return strings.IndexFunc(s, IsCJK) >= 0
}

// HasLatin reports whether s contains an ASCII letter.
func HasLatin(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		r = unicode.ToLower(r)
		return r >= 'a' && r <= 'z'
	}) >= 0
}

// IsWordRune reports whether r counts as part of a word: letters (CJK
// included), digits and underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || IsCJK(r)
}

// IsOpenParen reports whether r is an ASCII or full-width opening parenthesis.
func IsOpenParen(r rune) bool { return r == '(' || r == '（' }

// IsCloseParen reports whether r is an ASCII or full-width closing parenthesis.
func IsCloseParen(r rune) bool { return r == ')' || r == '）' }

// ParenBalance returns the number of opening minus closing parentheses in s,
// counting ASCII and full-width forms.
func ParenBalance(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case IsOpenParen(r):
			n++
		case IsCloseParen(r):
			n--
		}
	}
	return n
}
