package lexicon

import (
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// varietySeparators turns every list delimiter seen in varietal listings
// into a comma. Width folding runs first, so only half-width forms of the
// full-width comma and parentheses remain.
var varietySeparators = strings.NewReplacer(
	"/", ",",
	"、", ",",
	"，", ",",
	"│", ",",
	"|", ",",
	"（", ",",
	"）", ",",
	"(", ",",
	")", ",",
)

// TokenizeVariety splits a raw varietal listing into lowercase candidate
// tokens. A chunk mixing CJK and Latin words ("黃波旁 Yellow Bourbon")
// yields one token per script so the Latin name stays whole.
func TokenizeVariety(raw string) []string {
	text := strings.TrimSpace(textnorm.FoldWidth(raw))
	if text == "" {
		return nil
	}
	text = varietySeparators.Replace(text)

	var tokens []string
	for _, chunk := range strings.Split(text, ",") {
		chunk = textnorm.CollapseSpace(chunk)
		if chunk == "" {
			continue
		}
		if !textnorm.HasCJK(chunk) || !textnorm.HasLatin(chunk) {
			tokens = append(tokens, strings.ToLower(chunk))
			continue
		}

		var cjk, latin []string
		for _, part := range strings.Fields(chunk) {
			if textnorm.HasCJK(part) {
				cjk = append(cjk, part)
			} else {
				latin = append(latin, part)
			}
		}
		if len(cjk) > 0 {
			tokens = append(tokens, strings.ToLower(strings.Join(cjk, "")))
		}
		if len(latin) > 0 {
			tokens = append(tokens, strings.ToLower(strings.Join(latin, " ")))
		}
	}
	return tokens
}

// NormalizeVariety tokenizes raw and canonicalizes each token against the
// variety category. The result holds distinct terms in first-seen order and
// is never nil.
func (l *Lexicon) NormalizeVariety(raw string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, tok := range TokenizeVariety(raw) {
		t, ok := l.Canonicalize(Variety, tok)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
