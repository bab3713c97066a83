package lexicon

import (
	_ "embed"
	"log/slog"
	"sync"
)

//go:embed data/coffee_lexicon.yaml
var defaultYAML []byte

// DefaultYAML returns a copy of the built-in lexicon document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	src, err := ParseSource(defaultYAML)
	if err != nil {
		return nil, err
	}
	return New(src, slog.Default())
})

// Default returns the built-in lexicon. It is compiled once and shared.
func Default() (*Lexicon, error) {
	return defaultLexicon()
}

// Parse compiles a YAML lexicon document.
func Parse(data []byte, logger *slog.Logger) (*Lexicon, error) {
	src, err := ParseSource(data)
	if err != nil {
		return nil, err
	}
	return New(src, logger)
}

// LoadFile compiles the lexicon at path (YAML or gob snapshot).
func LoadFile(path string, logger *slog.Logger) (*Lexicon, error) {
	src, err := LoadSource(path)
	if err != nil {
		return nil, err
	}
	return New(src, logger)
}
