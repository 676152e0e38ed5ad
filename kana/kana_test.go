package kana

import "testing"

var words = []struct {
	latin string
	kana  string
}{
	{"kakikaerareru", "かきかえられる"},
	{"tsunami", "つなみ"},
	{"chuunibyou", "ちゅうにびょう"},
	{"gyakuni", "ぎゃくに"},
	{"beppu", "べっぷ"},
	{"shutsu", "しゅつ"},
	{"annki", "あんき"},
	{"ra-menn", "らーめん"},
	{"efferu", "えっふぇる"},
}

func TestToKana(t *testing.T) {
	for _, w := range words {
		if got := ToKana(w.latin); got != w.kana {
			t.Errorf("ToKana(%q) = %q, want %q", w.latin, got, w.kana)
		}
	}
}

func TestToLatin(t *testing.T) {
	for _, w := range words {
		if got := ToLatin(w.kana); got != w.latin {
			t.Errorf("ToLatin(%q) = %q, want %q", w.kana, got, w.latin)
		}
	}
	if got := ToLatin("じん"); got != "jinn" {
		t.Errorf("ToLatin(じん) = %q, want jinn", got)
	}
}

func TestToKanaPartialInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"an", "あn"},
		{"anki", "あんき"},
		{"qku", "qく"},
		{"あi", "あい"},
		{"k", "k"},
		{"ky", "ky"},
		{"nya", "にゃ"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ToKana(tc.in); got != tc.want {
			t.Errorf("ToKana(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToKanaAliases(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"si", "し"},
		{"zi", "じ"},
		{"ti", "ち"},
		{"tu", "つ"},
		{"hu", "ふ"},
		{"ltsu", "っ"},
	}
	for _, tc := range tests {
		if got := ToKana(tc.in); got != tc.want {
			t.Errorf("ToKana(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToLatinPassThrough(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"犬", "犬"},
		{"いぬ犬", "inu犬"},
		{"abc", "abc"},
		{"っ", "っ"},
		{"っあ", "っa"},
	}
	for _, tc := range tests {
		if got := ToLatin(tc.in); got != tc.want {
			t.Errorf("ToLatin(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToLatinKatakana(t *testing.T) {
	if got := ToLatin("ラーメン"); got != "ra-menn" {
		t.Errorf("ToLatin(ラーメン) = %q, want ra-menn", got)
	}
	if got := ToLatin("ベッド"); got != "beddo" {
		t.Errorf("ToLatin(ベッド) = %q, want beddo", got)
	}
}

func TestRoundTripTable(t *testing.T) {
	for _, s := range syllables {
		if s.alias {
			continue
		}
		if got := ToLatin(ToKana(s.latin)); got != s.latin {
			t.Errorf("ToLatin(ToKana(%q)) = %q", s.latin, got)
		}
		if got := ToKana(ToLatin(s.kana)); got != s.kana {
			t.Errorf("ToKana(ToLatin(%q)) = %q", s.kana, got)
		}
	}
}

func TestContains(t *testing.T) {
	if !ContainsKana("dogいぬ") || ContainsKana("dog") {
		t.Error("ContainsKana")
	}
	if !ContainsKana("カタカナ") {
		t.Error("ContainsKana should accept katakana")
	}
	if !ContainsCJK("犬です") || ContainsCJK("いぬ") {
		t.Error("ContainsCJK")
	}
	if !IsKana('ー') || IsKana('a') {
		t.Error("IsKana")
	}
}
