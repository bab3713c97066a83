// Package product maps segmented description fields onto canonical coffee
// attributes and assembles per-page product records.
package product

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// Label priority lists. Sites in this family use any of these headings for
// the same attribute; the first non-empty one wins.
var (
	ProcessLabels = []string{"處理方式", "處理法", "Process", "process"}
	RoastLabels   = []string{"咖啡烘焙度", "烘焙度", "焙度", "烘焙", "Roast", "roast"}
	VarietyLabels = []string{"品種", "Variety", "variety"}
	OriginLabels  = []string{"國家", "國別", "產地", "Country", "country", "Origin", "origin"}
	RegionLabels  = []string{"產區", "地區", "區域", "Region", "region"}
	FarmLabels    = []string{
		"莊園", "庄園", "農場", "農園", "Farm", "farm",
		"處理廠", "處理場", "處理站",
		"生產者", "Producer", "producer",
	}
)

// RawFields are the attribute strings picked from a description, before
// canonicalization. Empty means absent.
type RawFields struct {
	Process string `json:"process_raw,omitempty"`
	Roast   string `json:"roast_raw,omitempty"`
	Variety string `json:"variety_raw,omitempty"`
	Origin  string `json:"origin_raw,omitempty"`
	Region  string `json:"region_raw,omitempty"`
	Farm    string `json:"farm_raw,omitempty"`

	// OriginFull is the whole origin value, kept for blend detection and
	// multi-country resolution.
	OriginFull string `json:"-"`
}

// Pick returns the first non-empty value among keys.
func Pick(kv map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(kv[k]); v != "" {
			return v
		}
	}
	return ""
}

// PickFields selects the raw attributes from a segmented description.
func PickFields(kv map[string]string) RawFields {
	full := Pick(kv, OriginLabels...)
	return RawFields{
		Process:    Pick(kv, ProcessLabels...),
		Roast:      Pick(kv, RoastLabels...),
		Variety:    Pick(kv, VarietyLabels...),
		Origin:     CleanOrigin(full),
		OriginFull: full,
		Region:     Pick(kv, RegionLabels...),
		Farm:       Pick(kv, FarmLabels...),
	}
}

var (
	reParenthetical = regexp.MustCompile(`\([^)]*\)`)
	reOriginSeps    = regexp.MustCompile(`[、,/|&]+`)
)

// CleanOrigin returns the primary origin token: parenthetical content
// removed, separators treated as blanks, first remaining word kept.
func CleanOrigin(text string) string {
	if text == "" {
		return ""
	}
	cleaned := reParenthetical.ReplaceAllString(textnorm.FoldWidth(text), " ")
	cleaned = reOriginSeps.ReplaceAllString(cleaned, " ")
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}
