package shop

import (
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
)

func init() {
	Register(&bargainAdapter{})
}

// descriptionSelectors locate the description block of a Shopline product
// page, most specific first.
var descriptionSelectors = []string{
	".ProductDetail-description-content",
	".ProductDetail-description",
	"#product-show",
}

// bargainAdapter parses Bargain Cafe, a Shopline storefront.
type bargainAdapter struct{}

func (b *bargainAdapter) ID() string { return "bargain" }
func (b *bargainAdapter) Description() string {
	return "Bargain Cafe coffee beans (Shopline storefront)"
}
func (b *bargainAdapter) SitemapURL() string { return "https://www.bargain-cafe.com/sitemap.xml" }

func (b *bargainAdapter) IsProductURL(url string) bool {
	return strings.Contains(url, "/products/")
}

func (b *bargainAdapter) Parse(page []byte, lex *lexicon.Lexicon) (*product.Record, error) {
	doc, err := loadDocument(page)
	if err != nil {
		return nil, err
	}
	data, err := extractProductJSON(page)
	if err != nil {
		return nil, err
	}

	title := productTitle(doc)
	desc := product.Describe(visibleText(firstMatch(doc, descriptionSelectors)), title, lex)

	return &product.Record{
		Source:     b.ID(),
		URL:        metaContent(doc, "og:url"),
		ExternalID: externalID(doc),
		Title:      title,
		BeanType:   desc.BeanType,
		Offer:      cheapestOffer(data),
		Raw:        desc.Raw,
		Canonical:  desc.Canonical,
	}, nil
}
