package shop

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// ErrNoProductJSON means the page has no embedded product data block.
var ErrNoProductJSON = errors.New("product JSON block not found")

// Shopline storefronts embed the product as
// app.value('product', JSON.parse('...'));
var reProductJSON = regexp.MustCompile(`(?s)app\.value\(\s*'product'\s*,\s*JSON\.parse\('(.+?)'\)\s*\);`)

type money struct {
	Dollars *float64 `json:"dollars"`
}

type variationField struct {
	Name string `json:"name"`
}

type variation struct {
	Price              *money           `json:"price"`
	PriceSale          *money           `json:"price_sale"`
	Fields             []variationField `json:"fields"`
	FieldsTranslations json.RawMessage  `json:"fields_translations"`
	Quantity           *float64         `json:"quantity"`
}

// translations returns the field labels for lang, or nil when the block is
// missing or shaped differently.
func (v *variation) translations(lang string) []string {
	if len(v.FieldsTranslations) == 0 {
		return nil
	}
	var m map[string][]string
	if err := json.Unmarshal(v.FieldsTranslations, &m); err != nil {
		return nil
	}
	return m[lang]
}

type productData struct {
	Variations []variation `json:"variations"`
}

// extractProductJSON finds and decodes the embedded product object.
func extractProductJSON(page []byte) (*productData, error) {
	m := reProductJSON.FindSubmatch(page)
	if m == nil {
		return nil, ErrNoProductJSON
	}
	raw, err := unescapeJSString(string(m[1]))
	if err != nil {
		return nil, fmt.Errorf("product JSON: %w", err)
	}
	var p productData
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("product JSON: %w", err)
	}
	return &p, nil
}

// unescapeJSString decodes the escapes of a single-quoted JavaScript string
// literal body.
func unescapeJSString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("trailing backslash")
		}
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("short \\x escape at %d", i)
			}
			n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape at %d: %w", i, err)
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, width, err := decodeUnicodeEscape(s, i)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += width
		case '\n':
			// line continuation
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

// decodeUnicodeEscape reads the hex digits after the 'u' at s[i], joining a
// following low surrogate when present. It returns the rune and how many
// bytes past i were consumed.
func decodeUnicodeEscape(s string, i int) (rune, int, error) {
	hi, err := hex4(s, i+1)
	if err != nil {
		return 0, 0, err
	}
	r := rune(hi)
	if utf16.IsSurrogate(r) && i+11 <= len(s) && s[i+5] == '\\' && s[i+6] == 'u' {
		if lo, err := hex4(s, i+7); err == nil {
			if dec := utf16.DecodeRune(r, rune(lo)); dec != unicode.ReplacementChar {
				return dec, 10, nil
			}
		}
	}
	return r, 4, nil
}

func hex4(s string, at int) (uint64, error) {
	if at+4 > len(s) {
		return 0, fmt.Errorf("short \\u escape at %d", at)
	}
	n, err := strconv.ParseUint(s[at:at+4], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad \\u escape at %d: %w", at, err)
	}
	return n, nil
}
