package segment

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/coffee-lexicon/pkg/textnorm"
)

var spaceReplacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00a0", " ",
	"\u3000", " ",
)

// Normalize rewrites description text so that every recognized label sits
// at the start of a line, followed by exactly one full-width colon.
func Normalize(text string) string {
	text = spaceReplacer.Replace(text)
	text = reEstateSpace.ReplaceAllString(text, "${1}園")
	text = splitInlineLabels(text)
	text = strings.ReplaceAll(text, ":", "：")
	text = reLabelColonNextLine.ReplaceAllString(text, "${1}：")
	text = reLabelDelims.ReplaceAllString(text, "${1}：")
	text = reLabelBlank.ReplaceAllString(text, "${1}：${2}")
	text = reColonRun.ReplaceAllString(text, "：")
	text = reLineEndSpace.ReplaceAllString(text, "\n")
	text = reBlankLines.ReplaceAllString(strings.TrimSpace(text), "\n")
	return text
}

// splitInlineLabels inserts a newline before a label that shares a line
// with earlier content. The label must follow a non-word rune and be
// followed by a delimiter; labels at the start of a line or glued to a
// preceding word are left alone. The delimiters that separated the label
// from the previous value are dropped with it.
func splitInlineLabels(text string) string {
	out := make([]byte, 0, len(text)+16)

	prev, i := rune(-1), 0
	for i < len(text) {
		if prev != -1 && prev != '\n' && !textnorm.IsWordRune(prev) {
			if label, ok := labelAt(text[i:]); ok {
				out = trimDanglingDelims(out)
				out = append(out, '\n')
				out = append(out, label...)
				i += len(label)
				prev, _ = utf8.DecodeLastRuneInString(label)
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		out = append(out, text[i:i+size]...)
		prev = r
		i += size
	}
	return string(out)
}

// trimDanglingDelims strips the delimiter run ending the last line of out.
// A line holding only a label keeps its delimiter so that it still reads
// as an empty field.
func trimDanglingDelims(out []byte) []byte {
	start := bytes.LastIndexByte(out, '\n') + 1
	line := string(out[start:])
	trimmed := strings.TrimRightFunc(line, isDelimiter)
	if len(trimmed) == len(line) {
		return out
	}
	if head := strings.TrimLeft(trimmed, " \t"); head == "" || isLabel(head) {
		return out
	}
	return out[:start+len(trimmed)]
}

// labelAt returns the longest label that prefixes s and is followed by a
// delimiter rune.
func labelAt(s string) (string, bool) {
	for _, l := range labelsByLength {
		if !strings.HasPrefix(s, l) {
			continue
		}
		next, size := utf8.DecodeRuneInString(s[len(l):])
		if size > 0 && isDelimiter(next) {
			return l, true
		}
	}
	return "", false
}
