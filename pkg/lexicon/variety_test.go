package lexicon

import (
	"reflect"
	"testing"
)

func TestTokenizeVariety(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"卡度拉 caturra / 黃波旁 Yellow Bourbon", []string{"卡度拉", "caturra", "黃波旁", "yellow bourbon"}},
		{"Yellow Bourbon", []string{"yellow bourbon"}},
		{"SL28、SL34，Ruiru 11", []string{"sl28", "sl34", "ruiru 11"}},
		{"波旁（Bourbon）", []string{"波旁", "bourbon"}},
		{"Caturra | Catuai │ Typica", []string{"caturra", "catuai", "typica"}},
		{"黃 波旁 Yellow   Bourbon", []string{"黃波旁", "yellow bourbon"}},
		{"ＧＥＩＳＨＡ", []string{"geisha"}},
		{",,/ ,", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := TokenizeVariety(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TokenizeVariety(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeVariety(t *testing.T) {
	lex := mustDefaultLexicon(t)
	tests := []struct {
		input string
		want  []string
	}{
		{"卡度拉 caturra / 黃波旁 Yellow Bourbon", []string{"卡度拉（Caturra）", "黃波旁（Yellow Bourbon）"}},
		{"Yellow Bourbon", []string{"黃波旁（Yellow Bourbon）"}},
		{"caturra, caturra", []string{"卡度拉（Caturra）"}},
		{"波旁（Bourbon）", []string{"波旁（Bourbon）"}},
		{"SL28、SL34", []string{"SL28", "SL34"}},
		{"Gesha 1931", []string{"藝伎（Geisha）"}},
		{"unknown cultivar", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := lex.NormalizeVariety(tt.input)
		if got == nil {
			t.Errorf("NormalizeVariety(%q) returned nil", tt.input)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeVariety(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
