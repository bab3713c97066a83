package product

import (
	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/segment"
)

// CanonicalFields are the vocabulary terms derived from RawFields. Empty
// strings mean no match; Variety is never nil once built by Normalize.
type CanonicalFields struct {
	Process string   `json:"process,omitempty"`
	Roast   string   `json:"roast,omitempty"`
	Variety []string `json:"variety"`
	Country string   `json:"country,omitempty"`
}

// Normalize canonicalizes raw against lex. Country resolution reads the
// full origin text so that every listed country is kept.
func Normalize(raw RawFields, lex *lexicon.Lexicon) CanonicalFields {
	origin := raw.OriginFull
	if origin == "" {
		origin = raw.Origin
	}
	return CanonicalFields{
		Process: lex.NormalizeProcess(raw.Process),
		Roast:   lex.NormalizeRoast(raw.Roast),
		Variety: lex.NormalizeVariety(raw.Variety),
		Country: ResolveCountries(lex, origin, raw.Region),
	}
}

// Description is the full parse of one description block.
type Description struct {
	Fields    map[string]string `json:"fields"`
	Raw       RawFields         `json:"raw"`
	Canonical CanonicalFields   `json:"canonical"`
	BeanType  BeanType          `json:"bean_type"`
}

// ParseDescription segments a description block and picks the raw
// attributes from it.
func ParseDescription(text string) (map[string]string, RawFields) {
	fields := segment.Parse(text)
	return fields, PickFields(fields)
}

// Describe segments text, picks the raw attributes, canonicalizes them and
// classifies the bean type using title.
func Describe(text, title string, lex *lexicon.Lexicon) Description {
	fields, raw := ParseDescription(text)
	return Description{
		Fields:    fields,
		Raw:       raw,
		Canonical: Normalize(raw, lex),
		BeanType:  ClassifyBeanType(title, raw.OriginFull, raw.Region),
	}
}
