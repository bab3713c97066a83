package lexicon

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func isGob(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gob")
}

// loadGob decodes a lexicon source snapshot.
func loadGob(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var src Source
	if err := gob.NewDecoder(f).Decode(&src); err != nil {
		return nil, fmt.Errorf("decode gob %s: %w", path, err)
	}
	return &src, nil
}

// SaveGob writes src to path as a gob snapshot. Snapshots keep term order
// and skip YAML parsing at startup.
func SaveGob(src *Source, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(src); err != nil {
		f.Close()
		return fmt.Errorf("encode gob: %w", err)
	}
	return f.Close()
}
