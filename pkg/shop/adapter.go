// Package shop turns storefront product pages into product records. Each
// storefront layout is an Adapter registered under its source ID.
package shop

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
)

// ErrUnknownSource is returned by Get for an unregistered source ID.
var ErrUnknownSource = errors.New("unknown source")

// Adapter parses the product pages of one storefront.
type Adapter interface {
	// ID returns the source identifier (e.g. "bargain").
	ID() string
	// Description returns a human-readable description.
	Description() string
	// SitemapURL returns the default sitemap location.
	SitemapURL() string
	// IsProductURL reports whether a sitemap entry is a product page.
	IsProductURL(url string) bool
	// Parse builds a record from a full product page.
	Parse(page []byte, lex *lexicon.Lexicon) (*product.Record, error)
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
