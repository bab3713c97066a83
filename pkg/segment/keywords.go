package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Labels is the set of attribute headings recognized in description text.
var Labels = []string{
	"咖啡烘焙度", "處理方式", "處理法", "品種", "國別", "國家",
	"產地", "產區", "地區", "區域", "海拔",
	"處理廠", "處理場", "處理站",
	"莊園", "庄園", "農場", "農園", "生產者",
	"Producer", "producer", "Process", "process",
	"Variety", "variety", "Country", "country",
	"Origin", "origin", "Region", "region",
	"Farm", "farm", "Roast", "roast",
	"焙度", "烘焙度", "烘焙",
}

// ProducerLabels are the headings whose values may list several producers.
var ProducerLabels = []string{"生產者", "Producer", "producer"}

// FacilityLabel receives the first producer unit when a producer value
// names several.
const FacilityLabel = "處理廠"

// facilitySuffixes close a producer unit (factory, yard, station).
var facilitySuffixes = []string{"廠", "場", "站"}

// delimiters may separate a label from its value.
const delimiters = "：:｜|│／/=－-"

// placeholderMarkers flag template residue that must never become data.
var placeholderMarkers = []string{"{{", "}}", "=>", "translate"}

// labelsByLength is Labels sorted longest first so that no label is
// shadowed by one of its prefixes.
var labelsByLength = func() []string {
	out := append([]string(nil), Labels...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}()

var labelAlternation = func() string {
	quoted := make([]string, len(labelsByLength))
	for i, l := range labelsByLength {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return "(" + strings.Join(quoted, "|") + ")"
}()

const delimClass = `[：｜|│／/=－\-]`

var (
	reEstateSpace = regexp.MustCompile(`([莊庄])\s+園`)
	// label, then a colon pushed onto the following line.
	reLabelColonNextLine = regexp.MustCompile(labelAlternation + `\s*\n\s*：`)
	// line-start label followed by a run of delimiters.
	reLabelDelims = regexp.MustCompile(`(?m)^[ \t]*` + labelAlternation + `[ \t]*(?:` + delimClass + `[ \t]*)+`)
	// line-start label separated from its value by blanks only.
	reLabelBlank = regexp.MustCompile(`(?m)^[ \t]*` + labelAlternation + `[ \t]+([^\s：])`)
	reColonRun     = regexp.MustCompile(`[ \t]*(?:：[ \t]*)+`)
	reBlankLines   = regexp.MustCompile(`\n\s*\n`)
	reLineEndSpace = regexp.MustCompile(`[ \t]+\n`)
)

func isLabel(s string) bool {
	for _, l := range Labels {
		if s == l {
			return true
		}
	}
	return false
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(delimiters, r)
}

func isProducerLabel(key string) bool {
	for _, l := range ProducerLabels {
		if key == l {
			return true
		}
	}
	return false
}

func hasPlaceholder(s string) bool {
	for _, m := range placeholderMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
