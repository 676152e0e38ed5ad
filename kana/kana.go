// Package kana converts between romaji and hiragana.
//
// ToKana is written for live input: it can be applied to a partially typed
// answer after every keystroke, leaving any trailing romaji that does not yet
// form a syllable untouched. ToLatin is its inverse and is what answer
// matching uses to compare kana by sound.
//
//	kana.ToKana("kakikaerareru") // "かきかえられる"
//	kana.ToLatin("べっぷ")        // "beppu"
package kana

import "strings"

const (
	sokuon = 'っ'
	hatsu  = 'ん'

	// maxBuffered is the longest romaji cluster in the table.
	maxBuffered = 4
)

// IsKana reports whether r is in the hiragana or katakana blocks.
func IsKana(r rune) bool {
	return r >= 0x3040 && r <= 0x30FF
}

// ContainsKana reports whether s has at least one kana character.
func ContainsKana(s string) bool {
	return strings.ContainsFunc(s, IsKana)
}

// ContainsCJK reports whether s has at least one CJK unified ideograph.
func ContainsCJK(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r >= 0x4E00 && r <= 0x9FFF
	})
}

// ToKana converts romaji in s to hiragana, scanning left to right and
// preferring the longest cluster that ends at the current character.
//
// A doubled consonant other than n becomes っ. An n followed by anything
// but a vowel or y becomes ん. Kana already in s passes through, and romaji
// that never completes a syllable is copied as typed.
func ToKana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	working := make([]rune, 0, maxBuffered+1)

	for _, c := range s {
		if IsKana(c) {
			b.WriteString(string(working))
			b.WriteRune(c)
			working = working[:0]
			continue
		}
		working = append(working, c)
		if len(working) > maxBuffered {
			b.WriteRune(working[0])
			working = working[1:]
		}
		if len(working) >= 2 && working[0] == working[1] && working[0] != 'n' {
			b.WriteRune(sokuon)
			working = working[1:]
		}
		for i := range working {
			if k, ok := toKana[string(working[i:])]; ok {
				b.WriteString(string(working[:i]))
				b.WriteString(k)
				working = working[:0]
				break
			}
		}
		if len(working) >= 2 && working[0] == 'n' && !isVowelOrY(working[1]) {
			b.WriteRune(hatsu)
			working = working[1:]
		}
	}
	b.WriteString(string(working))
	return b.String()
}

// ToLatin converts hiragana in s to romaji. Katakana is read as the
// matching hiragana. Characters without a romaji spelling pass through.
//
// A small-kana pair such as しゅ reads as one cluster, and っ doubles the
// first consonant of the syllable that follows it.
func ToLatin(s string) string {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = foldKatakana(r)
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); {
		if rs[i] == sokuon {
			if l, _ := syllableAt(rs, i+1); l != "" && isGeminate(l[0]) {
				b.WriteByte(l[0])
				i++
				continue
			}
		}
		if l, n := syllableAt(rs, i); n > 0 {
			b.WriteString(l)
			i += n
			continue
		}
		b.WriteRune(rs[i])
		i++
	}
	return b.String()
}

// syllableAt returns the romaji of the syllable starting at rs[i] and how
// many runes it spans, preferring a two-rune pair.
func syllableAt(rs []rune, i int) (string, int) {
	if i >= len(rs) {
		return "", 0
	}
	if i+1 < len(rs) {
		if l, ok := toLatin[string(rs[i:i+2])]; ok {
			return l, 2
		}
	}
	if l, ok := toLatin[string(rs[i])]; ok {
		return l, 1
	}
	return "", 0
}

func foldKatakana(r rune) rune {
	if r >= 'ァ' && r <= 'ヶ' {
		return r - 0x60
	}
	return r
}

func isGeminate(c byte) bool {
	return c >= 'a' && c <= 'z' && !isVowelOrY(rune(c)) && c != 'n'
}

func isVowelOrY(r rune) bool {
	switch r {
	case 'a', 'i', 'u', 'e', 'o', 'y':
		return true
	}
	return false
}
