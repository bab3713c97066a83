package shop

import "strings"

// DefaultSkipKeywords filter out bundles and brewing gear sold alongside
// beans.
var DefaultSkipKeywords = []string{"組合", "濾掛", "濾紙", "濾杯", "+", "|"}

// PageTitle returns the product title of a page (<h1>, then og:title).
func PageTitle(page []byte) string {
	doc, err := loadDocument(page)
	if err != nil {
		return ""
	}
	return productTitle(doc)
}

// ShouldSkip reports whether title contains any non-empty keyword.
func ShouldSkip(title string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// ParseKeywords splits a comma-separated keyword list, dropping blanks.
func ParseKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
