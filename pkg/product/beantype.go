package product

import (
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// BeanType classifies a product as single origin or blend.
type BeanType string

const (
	Blend        BeanType = "配方（Blend）"
	SingleOrigin BeanType = "單品（Single Origin）"
)

// BlendKeywords mark a blend when found in a product title.
var BlendKeywords = []string{"配方", "混合", "混搭", "調配", "調和", "blend", "綜合"}

// ClassifyBeanType decides blend or single origin from the title, then
// the full origin text, then the region text.
func ClassifyBeanType(title, originFull, region string) BeanType {
	t := strings.ToLower(textnorm.FoldWidth(title))
	for _, kw := range BlendKeywords {
		if strings.Contains(t, kw) {
			return Blend
		}
	}
	if multiplePlaces(originFull) || multiplePlaces(region) {
		return Blend
	}
	return SingleOrigin
}

// multiplePlaces reports whether text enumerates two or more places.
func multiplePlaces(text string) bool {
	if text == "" {
		return false
	}
	return len(splitPlaces(text)) >= 2
}
