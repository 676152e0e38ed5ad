package kana

// syllable maps one Latin spelling to its hiragana.
// Alias spellings convert forward only; ToLatin uses the canonical one.
type syllable struct {
	latin string
	kana  string
	alias bool
}

var syllables = []syllable{
	{latin: "a", kana: "あ"},
	{latin: "i", kana: "い"},
	{latin: "u", kana: "う"},
	{latin: "e", kana: "え"},
	{latin: "o", kana: "お"},

	{latin: "ka", kana: "か"},
	{latin: "ki", kana: "き"},
	{latin: "ku", kana: "く"},
	{latin: "ke", kana: "け"},
	{latin: "ko", kana: "こ"},
	{latin: "kya", kana: "きゃ"},
	{latin: "kyu", kana: "きゅ"},
	{latin: "kyo", kana: "きょ"},

	{latin: "ga", kana: "が"},
	{latin: "gi", kana: "ぎ"},
	{latin: "gu", kana: "ぐ"},
	{latin: "ge", kana: "げ"},
	{latin: "go", kana: "ご"},
	{latin: "gya", kana: "ぎゃ"},
	{latin: "gyu", kana: "ぎゅ"},
	{latin: "gyo", kana: "ぎょ"},

	{latin: "sa", kana: "さ"},
	{latin: "shi", kana: "し"},
	{latin: "si", kana: "し", alias: true},
	{latin: "su", kana: "す"},
	{latin: "se", kana: "せ"},
	{latin: "so", kana: "そ"},
	{latin: "sha", kana: "しゃ"},
	{latin: "shu", kana: "しゅ"},
	{latin: "sho", kana: "しょ"},

	{latin: "za", kana: "ざ"},
	{latin: "ji", kana: "じ"},
	{latin: "zi", kana: "じ", alias: true},
	{latin: "zu", kana: "ず"},
	{latin: "ze", kana: "ぜ"},
	{latin: "zo", kana: "ぞ"},
	{latin: "ja", kana: "じゃ"},
	{latin: "ju", kana: "じゅ"},
	{latin: "jo", kana: "じょ"},

	{latin: "ta", kana: "た"},
	{latin: "chi", kana: "ち"},
	{latin: "ti", kana: "ち", alias: true},
	{latin: "tsu", kana: "つ"},
	{latin: "tu", kana: "つ", alias: true},
	{latin: "te", kana: "て"},
	{latin: "to", kana: "と"},
	{latin: "cha", kana: "ちゃ"},
	{latin: "chu", kana: "ちゅ"},
	{latin: "cho", kana: "ちょ"},

	{latin: "da", kana: "だ"},
	{latin: "di", kana: "ぢ"},
	{latin: "du", kana: "づ"},
	{latin: "de", kana: "で"},
	{latin: "do", kana: "ど"},

	{latin: "na", kana: "な"},
	{latin: "ni", kana: "に"},
	{latin: "nu", kana: "ぬ"},
	{latin: "ne", kana: "ね"},
	{latin: "no", kana: "の"},
	{latin: "nya", kana: "にゃ"},
	{latin: "nyu", kana: "にゅ"},
	{latin: "nyo", kana: "にょ"},

	{latin: "ha", kana: "は"},
	{latin: "hi", kana: "ひ"},
	{latin: "fu", kana: "ふ"},
	{latin: "hu", kana: "ふ", alias: true},
	{latin: "he", kana: "へ"},
	{latin: "ho", kana: "ほ"},
	{latin: "hya", kana: "ひゃ"},
	{latin: "hyu", kana: "ひゅ"},
	{latin: "hyo", kana: "ひょ"},
	{latin: "fa", kana: "ふぁ"},
	{latin: "fi", kana: "ふぃ"},
	{latin: "fe", kana: "ふぇ"},
	{latin: "fo", kana: "ふぉ"},

	{latin: "ba", kana: "ば"},
	{latin: "bi", kana: "び"},
	{latin: "bu", kana: "ぶ"},
	{latin: "be", kana: "べ"},
	{latin: "bo", kana: "ぼ"},
	{latin: "bya", kana: "びゃ"},
	{latin: "byu", kana: "びゅ"},
	{latin: "byo", kana: "びょ"},

	{latin: "pa", kana: "ぱ"},
	{latin: "pi", kana: "ぴ"},
	{latin: "pu", kana: "ぷ"},
	{latin: "pe", kana: "ぺ"},
	{latin: "po", kana: "ぽ"},
	{latin: "pya", kana: "ぴゃ"},
	{latin: "pyu", kana: "ぴゅ"},
	{latin: "pyo", kana: "ぴょ"},

	{latin: "ma", kana: "ま"},
	{latin: "mi", kana: "み"},
	{latin: "mu", kana: "む"},
	{latin: "me", kana: "め"},
	{latin: "mo", kana: "も"},
	{latin: "mya", kana: "みゃ"},
	{latin: "myu", kana: "みゅ"},
	{latin: "myo", kana: "みょ"},

	{latin: "ra", kana: "ら"},
	{latin: "ri", kana: "り"},
	{latin: "ru", kana: "る"},
	{latin: "re", kana: "れ"},
	{latin: "ro", kana: "ろ"},
	{latin: "rya", kana: "りゃ"},
	{latin: "ryu", kana: "りゅ"},
	{latin: "ryo", kana: "りょ"},

	{latin: "ya", kana: "や"},
	{latin: "yu", kana: "ゆ"},
	{latin: "yo", kana: "よ"},
	{latin: "wa", kana: "わ"},
	{latin: "wo", kana: "を"},

	{latin: "nn", kana: "ん"},
	{latin: "-", kana: "ー"},
	{latin: "ltsu", kana: "っ", alias: true},
}

var (
	toKana  = make(map[string]string, len(syllables))
	toLatin = make(map[string]string, len(syllables))
)

func init() {
	for _, s := range syllables {
		toKana[s.latin] = s.kana
		if !s.alias {
			toLatin[s.kana] = s.latin
		}
	}
}
