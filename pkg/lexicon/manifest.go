package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TermSpec is one canonical term and the rules that map raw text onto it.
type TermSpec struct {
	Canonical string   `yaml:"-"`
	Aliases   []string `yaml:"aliases"`
	Regex     []string `yaml:"regex"`
}

// CategorySpec is a category with its terms in document order.
type CategorySpec struct {
	Name  Category
	Terms []TermSpec
}

// Source is the uncompiled lexicon configuration. Category and term order
// follow the YAML document, which decides first-match precedence.
type Source struct {
	Categories []CategorySpec
}

// Category returns the spec for name, or nil if the source does not define it.
func (s *Source) Category(name Category) *CategorySpec {
	for i := range s.Categories {
		if s.Categories[i].Name == name {
			return &s.Categories[i]
		}
	}
	return nil
}

// ParseSource decodes a YAML lexicon. The document is walked as a yaml.Node
// tree so that term order survives decoding.
func ParseSource(data []byte) (*Source, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	src := &Source{}
	if len(doc.Content) == 0 {
		return src, nil
	}
	root := resolve(doc.Content[0])
	if isNull(root) {
		return src, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse lexicon: line %d: top level must be a mapping of categories", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := Category(root.Content[i].Value)
		if src.Category(name) != nil {
			return nil, fmt.Errorf("parse lexicon: line %d: duplicate category %q", root.Content[i].Line, name)
		}
		cs, err := parseCategory(name, resolve(root.Content[i+1]))
		if err != nil {
			return nil, err
		}
		src.Categories = append(src.Categories, cs)
	}
	return src, nil
}

func parseCategory(name Category, body *yaml.Node) (CategorySpec, error) {
	cs := CategorySpec{Name: name}
	if isNull(body) {
		return cs, nil
	}
	if body.Kind != yaml.MappingNode {
		return cs, fmt.Errorf("parse lexicon: line %d: category %q must be a mapping of terms", body.Line, name)
	}

	seen := make(map[string]bool, len(body.Content)/2)
	for j := 0; j+1 < len(body.Content); j += 2 {
		key := body.Content[j]
		canonical := key.Value
		if canonical == "" {
			return cs, fmt.Errorf("parse lexicon: line %d: empty term in category %q", key.Line, name)
		}
		if seen[canonical] {
			return cs, fmt.Errorf("parse lexicon: line %d: duplicate term %q in category %q", key.Line, canonical, name)
		}
		seen[canonical] = true

		var ts TermSpec
		if v := resolve(body.Content[j+1]); !isNull(v) {
			if err := v.Decode(&ts); err != nil {
				return cs, fmt.Errorf("parse lexicon: term %q in %q: %w", canonical, name, err)
			}
		}
		ts.Canonical = canonical
		cs.Terms = append(cs.Terms, ts)
	}
	return cs, nil
}

// LoadSource reads a lexicon source file. Files ending in .gob are read as
// snapshots written by SaveGob; anything else is parsed as YAML.
func LoadSource(path string) (*Source, error) {
	if isGob(path) {
		return loadGob(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	src, err := ParseSource(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}
