package product

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// CountrySeparator joins canonical countries in a single column.
const CountrySeparator = ","

var (
	reParens    = regexp.MustCompile(`[()]`)
	rePlaceSeps = regexp.MustCompile(`[、,/&+|和與及]+`)
)

// splitPlaces width-folds text, blanks out parentheses and splits on the
// enumeration marks used between place names. Empty parts are dropped.
func splitPlaces(text string) []string {
	raw := reParens.ReplaceAllString(textnorm.FoldWidth(text), " ")
	var parts []string
	for _, p := range rePlaceSeps.Split(raw, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Countries canonicalizes each place named in text. Results are distinct
// and in first-seen order.
func Countries(lex *lexicon.Lexicon, text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range splitPlaces(text) {
		for _, c := range partCountries(lex, part) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// partCountries resolves one enumerated part. The whole part is tried
// first so that multi-word names such as "Costa Rica" stay intact; on a
// miss each blank-separated word is resolved on its own, and only when no
// word resolves does the part fall back to an alias substring search.
func partCountries(lex *lexicon.Lexicon, part string) []string {
	if c, ok := lex.Canonicalize(lexicon.Country, part); ok {
		return []string{c}
	}
	if words := strings.Fields(part); len(words) > 1 {
		var out []string
		for _, w := range words {
			c, ok := lex.Canonicalize(lexicon.Country, w)
			if !ok {
				c, ok = lex.ContainsAlias(lexicon.Country, w)
			}
			if ok {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if c, ok := lex.ContainsAlias(lexicon.Country, part); ok {
		return []string{c}
	}
	return nil
}

// ResolveCountries returns the comma-joined canonical countries of origin,
// or of region when origin yields none. It returns "" when neither does.
func ResolveCountries(lex *lexicon.Lexicon, origin, region string) string {
	countries := Countries(lex, origin)
	if len(countries) == 0 {
		countries = Countries(lex, region)
	}
	return strings.Join(countries, CountrySeparator)
}
