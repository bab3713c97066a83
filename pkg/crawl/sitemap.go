package crawl

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

// ParseSitemap returns every <loc> value of a sitemap or sitemap index,
// trimmed, deduplicated and sorted.
func ParseSitemap(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	seen := make(map[string]bool)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sitemap: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "loc" {
			continue
		}
		var loc string
		if err := dec.DecodeElement(&loc, &start); err != nil {
			return nil, fmt.Errorf("parse sitemap: %w", err)
		}
		if loc = strings.TrimSpace(loc); loc != "" {
			seen[loc] = true
		}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls, nil
}

// ProductURLs fetches the adapter's sitemap and keeps the product pages.
func (f *Fetcher) ProductURLs(ctx context.Context, a shop.Adapter) ([]string, error) {
	data, err := f.Fetch(ctx, a.SitemapURL())
	if err != nil {
		return nil, fmt.Errorf("sitemap %s: %w", a.ID(), err)
	}
	all, err := ParseSitemap(data)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, u := range all {
		if a.IsProductURL(u) {
			urls = append(urls, u)
		}
	}
	f.logger.Info("sitemap loaded", "source", a.ID(), "urls", len(all), "products", len(urls))
	return urls, nil
}
