package product

import (
	"strconv"
	"strings"
)

// VarietySeparator joins canonical varieties in a single column.
const VarietySeparator = ", "

// Offer holds the commercial fields of the cheapest variation on a page.
// Nil means the page did not say.
type Offer struct {
	Price         *float64 `json:"price"`
	PriceOriginal *float64 `json:"price_original"`
	WeightG       *int     `json:"weight_g"`
	InStock       *bool    `json:"in_stock"`
}

// Record is one parsed product page. It is built once and not modified.
type Record struct {
	Source     string   `json:"source"`
	URL        string   `json:"url,omitempty"`
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	BeanType   BeanType `json:"bean_type"`
	Offer
	Raw       RawFields       `json:"raw"`
	Canonical CanonicalFields `json:"canonical"`
}

// Columns is the flat column layout produced by Row.
var Columns = []string{
	"source", "url", "external_id", "title", "bean_type",
	"price", "price_original", "weight_g", "in_stock",
	"process_raw", "roast_raw", "variety_raw", "origin_raw", "region_raw", "farm_raw",
	"norm_process", "norm_roast", "norm_variety", "norm_country",
}

// Row flattens r in Columns order. Absent values are empty cells.
func (r *Record) Row() []string {
	return []string{
		r.Source, r.URL, r.ExternalID, r.Title, string(r.BeanType),
		formatFloat(r.Price), formatFloat(r.PriceOriginal), formatInt(r.WeightG), formatBool(r.InStock),
		r.Raw.Process, r.Raw.Roast, r.Raw.Variety, r.Raw.Origin, r.Raw.Region, r.Raw.Farm,
		r.Canonical.Process, r.Canonical.Roast,
		strings.Join(r.Canonical.Variety, VarietySeparator),
		r.Canonical.Country,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
