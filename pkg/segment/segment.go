// Package segment turns the visible text of a product description into a
// label→value map.
//
// Descriptions are loosely formatted: several labels may share a line,
// delimiters vary between colons, pipes, slashes and dashes, and a
// parenthesised translation can wrap onto the next line. Parse recovers a
// flat mapping without a grammar.
package segment

import (
	"strings"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

// mode is the segmenter's line state.
type mode int

const (
	idle mode = iota
	awaitingContinuation
)

// lineState is carried from one line to the next.
type lineState struct {
	mode mode
	key  string // label whose value is still open; set only when awaiting
}

// Parse normalizes text and splits it into label→value pairs. Lines that
// carry template residue or an empty side are dropped. Parse never fails;
// empty input yields an empty map.
func Parse(text string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return fields
	}

	var st lineState
	for _, raw := range strings.Split(Normalize(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		st = step(st, line, fields)
	}
	return fields
}

func step(st lineState, line string, fields map[string]string) lineState {
	key, value, found := strings.Cut(line, "：")
	if !found {
		return continueValue(st, line, fields)
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" || hasPlaceholder(key) || hasPlaceholder(value) {
		return st
	}

	if isProducerLabel(key) {
		if units := producerUnits(value); len(units) >= 2 {
			fields[key] = strings.Join(units, " ")
			if _, ok := fields[FacilityLabel]; !ok {
				fields[FacilityLabel] = units[0]
			}
			return lineState{}
		}
	}

	fields[key] = value
	if last, _ := lastRune(value); textnorm.IsOpenParen(last) {
		return lineState{mode: awaitingContinuation, key: key}
	}
	return lineState{}
}

// continueValue appends a colon-less line to the open value, if any. The
// value closes once its parentheses balance.
func continueValue(st lineState, line string, fields map[string]string) lineState {
	if st.mode != awaitingContinuation || hasPlaceholder(line) {
		return st
	}

	cur := fields[st.key]
	if last, ok := lastRune(cur); ok && !textnorm.IsOpenParen(last) {
		cur += " "
	}
	cur += line
	fields[st.key] = cur

	if textnorm.ParenBalance(cur) <= 0 {
		return lineState{}
	}
	return st
}

// producerUnits groups whitespace-separated tokens into producer names. A
// unit ends at a token with a facility suffix; trailing tokens form the
// last unit.
func producerUnits(value string) []string {
	var units, buf []string
	for _, tok := range strings.Fields(value) {
		buf = append(buf, tok)
		if hasFacilitySuffix(tok) {
			units = append(units, strings.Join(buf, " "))
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		units = append(units, strings.Join(buf, " "))
	}
	return units
}

func hasFacilitySuffix(tok string) bool {
	for _, s := range facilitySuffixes {
		if strings.HasSuffix(tok, s) {
			return true
		}
	}
	return false
}

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r := []rune(s)
	return r[len(r)-1], true
}
