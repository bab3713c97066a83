package shop

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// Pound sizes as sold by Taiwanese roasters, in grams.
const (
	poundGrams        = 454
	halfPoundGrams    = 227
	quarterPoundGrams = 113
)

var (
	reKilograms = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg`)
	reGrams     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:公克|克|grams?\b|g\b)`)
	rePounds    = regexp.MustCompile(`(\d+)\s*磅`)
	reNumber    = regexp.MustCompile(`\d+`)
)

// weightFromText reads a package weight in grams from a variation label
// such as "200克 / 熟豆（無研磨）" or "半磅".
func weightFromText(s string) (int, bool) {
	s = textnorm.FoldWidth(s)
	if m := reKilograms.FindStringSubmatch(s); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(math.Round(f * 1000)), true
		}
	}
	if m := reGrams.FindStringSubmatch(s); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(math.Round(f)), true
		}
	}
	switch {
	case strings.Contains(s, "1/4"), strings.Contains(s, "四分之一磅"):
		return quarterPoundGrams, true
	case strings.Contains(s, "半磅"):
		return halfPoundGrams, true
	}
	if m := rePounds.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n * poundGrams, true
		}
	}
	if strings.Contains(s, "磅") {
		return poundGrams, true
	}
	for _, d := range reNumber.FindAllString(s, -1) {
		if len(d) < 2 || len(d) > 4 {
			continue
		}
		if n, _ := strconv.Atoi(d); n >= 50 && n <= 5000 {
			return n, true
		}
	}
	return 0, false
}

// weight tries the variation's own field labels, then its zh-hant
// translations.
func (v *variation) weight() (int, bool) {
	for _, f := range v.Fields {
		if g, ok := weightFromText(f.Name); ok {
			return g, true
		}
	}
	for _, t := range v.translations("zh-hant") {
		if g, ok := weightFromText(t); ok {
			return g, true
		}
	}
	return 0, false
}

// finalPrice is the sale price when one is set, else the list price.
func (v *variation) finalPrice() (float64, bool) {
	if v.PriceSale != nil && v.PriceSale.Dollars != nil && *v.PriceSale.Dollars != 0 {
		return *v.PriceSale.Dollars, true
	}
	if v.Price != nil && v.Price.Dollars != nil {
		return *v.Price.Dollars, true
	}
	return 0, false
}

// cheapestOffer picks the variation with the lowest final price; ties keep
// the first. Variations without any price are ignored.
func cheapestOffer(p *productData) product.Offer {
	var (
		best  product.Offer
		found bool
	)
	for i := range p.Variations {
		v := &p.Variations[i]
		price, ok := v.finalPrice()
		if !ok {
			continue
		}
		if found && price >= *best.Price {
			continue
		}
		found = true

		best = product.Offer{Price: &price}
		if v.Price != nil && v.Price.Dollars != nil {
			orig := *v.Price.Dollars
			best.PriceOriginal = &orig
		}
		if g, ok := v.weight(); ok {
			best.WeightG = &g
		}
		inStock := v.Quantity != nil && *v.Quantity > 0
		best.InStock = &inStock
	}
	return best
}
