package lexicon

import "strings"

// keywordRule maps any of its keywords, found as a substring, to a term.
type keywordRule struct {
	keywords []string
	term     string
}

// processRules are checked in order; anaerobic wins over washed so that
// "厭氧水洗" lands on the fermentation rather than the wash.
var processRules = []keywordRule{
	{keywords: []string{"厭氧", "anaerobic"}, term: "厭氧（Anaerobic）"},
	{keywords: []string{"水洗", "washed"}, term: "水洗（Washed）"},
	{keywords: []string{"日曬", "natural", "sun dried"}, term: "日曬（Natural）"},
	{keywords: []string{"蜜", "honey"}, term: "蜜處理（Honey）"},
	{keywords: []string{"溼剝", "濕剝", "giling basah"}, term: "溼剝法（Wet hulled）"},
}

func processHeuristic(text string) (string, bool) {
	for _, rule := range processRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.term, true
			}
		}
	}
	return "", false
}

// heuristics lists the categories that carry a fallback tier.
var heuristics = map[Category]heuristicMatcher{
	Process: processHeuristic,
}
