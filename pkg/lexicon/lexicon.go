// Package lexicon maps free-text coffee attributes (process, variety, roast,
// country) onto a fixed vocabulary of canonical terms.
//
// A Lexicon is immutable once built and safe for concurrent use.
package lexicon

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// Category names a vocabulary section.
type Category string

const (
	Process Category = "process"
	Variety Category = "variety"
	Roast   Category = "roast"
	Country Category = "country"
)

// Categories are the sections every Lexicon carries, even when the source
// leaves them out.
var Categories = []Category{Process, Variety, Roast, Country}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type term struct {
	canonical string
	aliases   []string
}

type category struct {
	name     Category
	terms    []term
	patterns int
	chain    []matcher
}

// Lexicon is a compiled vocabulary.
type Lexicon struct {
	categories map[Category]*category
	order      []Category
	normalize  textnorm.Normalizer
}

// New compiles src. Alias collisions inside a category are logged and the
// first declaring term keeps the alias. Invalid regexes are an error.
func New(src *Source, logger *slog.Logger) (*Lexicon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lex := &Lexicon{
		categories: make(map[Category]*category),
		normalize:  textnorm.Canonicalize,
	}

	names := append([]Category(nil), Categories...)
	for _, cs := range src.Categories {
		if !containsCategory(names, cs.Name) {
			names = append(names, cs.Name)
		}
	}

	for _, name := range names {
		var terms []TermSpec
		if cs := src.Category(name); cs != nil {
			terms = cs.Terms
		}
		c, err := lex.compileCategory(name, terms, logger)
		if err != nil {
			return nil, err
		}
		lex.categories[name] = c
		lex.order = append(lex.order, name)
	}
	return lex, nil
}

func (l *Lexicon) compileCategory(name Category, specs []TermSpec, logger *slog.Logger) (*category, error) {
	c := &category{name: name}
	index := make(map[string]string)
	var collisions int

	for _, spec := range specs {
		t := term{canonical: spec.Canonical}
		for _, a := range spec.Aliases {
			key := l.normalize(a)
			if key == "" {
				continue
			}
			if owner, exists := index[key]; exists {
				if owner != spec.Canonical {
					collisions++
					logger.Warn("alias collision", "category", name, "alias", key, "kept", owner, "ignored", spec.Canonical)
				}
				continue
			}
			index[key] = spec.Canonical
			t.aliases = append(t.aliases, key)
		}
		c.terms = append(c.terms, t)
	}

	pm, err := compilePatterns(name, specs)
	if err != nil {
		return nil, err
	}
	c.patterns = len(pm.patterns)

	c.chain = []matcher{aliasMatcher{index: index}, pm}
	if h, ok := heuristics[name]; ok {
		c.chain = append(c.chain, h)
	}
	if collisions > 0 {
		logger.Warn("alias collisions in category", "category", name, "collisions", collisions)
	}
	return c, nil
}

// Canonicalize maps raw text onto a canonical term of cat. It tries exact
// aliases, then regexes, then the category heuristic; the first hit wins.
// Unknown categories and empty input never match.
func (l *Lexicon) Canonicalize(cat Category, raw string) (string, bool) {
	c, ok := l.categories[cat]
	if !ok {
		return "", false
	}
	text := l.normalize(raw)
	if text == "" {
		return "", false
	}
	for _, m := range c.chain {
		if t, ok := m.match(text); ok {
			return t, true
		}
	}
	return "", false
}

// ContainsAlias reports the first term of cat whose alias occurs as a
// substring of the canonicalized text.
func (l *Lexicon) ContainsAlias(cat Category, text string) (string, bool) {
	c, ok := l.categories[cat]
	if !ok {
		return "", false
	}
	text = l.normalize(text)
	if text == "" {
		return "", false
	}
	for _, t := range c.terms {
		for _, a := range t.aliases {
			if strings.Contains(text, a) {
				return t.canonical, true
			}
		}
	}
	return "", false
}

// NormalizeProcess returns the canonical process term, or "" when nothing matches.
func (l *Lexicon) NormalizeProcess(raw string) string {
	t, _ := l.Canonicalize(Process, raw)
	return t
}

// NormalizeRoast returns the canonical roast term, or "".
func (l *Lexicon) NormalizeRoast(raw string) string {
	t, _ := l.Canonicalize(Roast, raw)
	return t
}

// NormalizeCountry returns the canonical country term, or "".
func (l *Lexicon) NormalizeCountry(raw string) string {
	t, _ := l.Canonicalize(Country, raw)
	return t
}

// Terms returns the canonical terms of cat in precedence order.
func (l *Lexicon) Terms(cat Category) []string {
	c, ok := l.categories[cat]
	if !ok {
		return nil
	}
	out := make([]string, len(c.terms))
	for i, t := range c.terms {
		out[i] = t.canonical
	}
	return out
}

// CategoryInfo summarizes one compiled category.
type CategoryInfo struct {
	Category  Category `json:"category"`
	Terms     int      `json:"terms"`
	Aliases   int      `json:"aliases"`
	Patterns  int      `json:"patterns"`
	Heuristic bool     `json:"heuristic"`
}

// Stats returns per-category counts in category order.
func (l *Lexicon) Stats() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(l.order))
	for _, name := range l.order {
		c := l.categories[name]
		info := CategoryInfo{
			Category: name,
			Terms:    len(c.terms),
			Patterns: c.patterns,
		}
		for _, t := range c.terms {
			info.Aliases += len(t.aliases)
		}
		_, info.Heuristic = heuristics[name]
		infos = append(infos, info)
	}
	return infos
}

// TermCount returns the number of canonical terms across all categories.
func (l *Lexicon) TermCount() int {
	n := 0
	for _, c := range l.categories {
		n += len(c.terms)
	}
	return n
}

func containsCategory(list []Category, c Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
