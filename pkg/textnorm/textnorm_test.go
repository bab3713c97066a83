package textnorm

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"Washed", "washed"},
		{"  Yellow   Bourbon ", "yellow bourbon"},
		{"ＷＡＳＨＥＤ", "washed"},
		{"水洗　處理", "水洗 處理"},
		{"Ａ B", "a b"},
		{"ge\u200bisha", "geisha"},
		{"", ""},
		{"   ", ""},
		{"日曬（Natural）", "日曬(natural)"},
	}
	for _, tt := range tests {
		got := Canonicalize(tt.input)
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"ＳＬ２８ / ＳＬ３４",
		"黃波旁 Yellow Bourbon",
		"  Caturra\t\tCatuai  ",
		"衣索比亞／肯亞",
		"ｇｉｌｉｎｇ　ｂａｓａｈ",
		"",
	}
	for _, s := range inputs {
		once := Canonicalize(s)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestFoldWidth(t *testing.T) {
	if got := FoldWidth("ＡＢＣ１２３：／"); got != "ABC123:/" {
		t.Errorf("FoldWidth = %q, want %q", got, "ABC123:/")
	}
	// Case is preserved.
	if got := FoldWidth("Bourbon"); got != "Bourbon" {
		t.Errorf("FoldWidth(Bourbon) = %q", got)
	}
}

func TestHasCJKAndLatin(t *testing.T) {
	tests := []struct {
		input       string
		cjk, latin bool
	}{
		{"黃波旁", true, false},
		{"Yellow", false, true},
		{"黃波旁 Yellow Bourbon", true, true},
		{"1234", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := HasCJK(tt.input); got != tt.cjk {
			t.Errorf("HasCJK(%q) = %v, want %v", tt.input, got, tt.cjk)
		}
		if got := HasLatin(tt.input); got != tt.latin {
			t.Errorf("HasLatin(%q) = %v, want %v", tt.input, got, tt.latin)
		}
	}
}

func TestIsWordRune(t *testing.T) {
	for _, r := range []rune{'a', 'Z', '0', '_', '莊', 'é'} {
		if !IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{' ', '\n', ':', '：', '/', '-', '（'} {
		if IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = true, want false", r)
		}
	}
}

func TestParenBalance(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"波旁（", 1},
		{"波旁（Bourbon）", 0},
		{"a (b (c)", 1},
		{"x)", -1},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ParenBalance(tt.input); got != tt.want {
			t.Errorf("ParenBalance(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
