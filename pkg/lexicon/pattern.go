package lexicon

import (
	"fmt"
	"regexp"
)

// matcher is one tier of a category's lookup chain. It receives text that
// has already been canonicalized.
type matcher interface {
	match(text string) (string, bool)
}

// aliasMatcher resolves exact alias hits. The index keeps the first term
// that declared each alias.
type aliasMatcher struct {
	index map[string]string
}

func (m aliasMatcher) match(text string) (string, bool) {
	term, ok := m.index[text]
	return term, ok
}

// compiledPattern is a single case-insensitive regex owned by a term.
type compiledPattern struct {
	term string
	re   *regexp.Regexp
}

// patternMatcher holds the regexes of every term, in term order then
// pattern order.
type patternMatcher struct {
	patterns []compiledPattern
}

func compilePatterns(cat Category, terms []TermSpec) (*patternMatcher, error) {
	pm := &patternMatcher{}
	for _, t := range terms {
		for _, expr := range t.Regex {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("category %s term %q: pattern %q: %w", cat, t.Canonical, expr, err)
			}
			pm.patterns = append(pm.patterns, compiledPattern{term: t.Canonical, re: re})
		}
	}
	return pm, nil
}

// match returns the term of the first pattern found anywhere in text.
func (pm *patternMatcher) match(text string) (string, bool) {
	for _, p := range pm.patterns {
		if p.re.MatchString(text) {
			return p.term, true
		}
	}
	return "", false
}

// heuristicMatcher is a last-resort rule set for a category.
type heuristicMatcher func(text string) (string, bool)

func (h heuristicMatcher) match(text string) (string, bool) {
	return h(text)
}
