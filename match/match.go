// Package match judges free-text answers against a card's expected answers.
//
// Answers are compared after normalization (trimmed, lowercased, and with
// commas, periods, hyphens and apostrophes removed). English answers tolerate
// up to two typos. Kana answers are compared by their romaji reading, and a
// near miss is reported as Close so the user can correct it.
package match

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/kana"
)

const (
	// shortAnswer is the length at which English answers lose typo tolerance.
	shortAnswer = 2

	maxTypos     = 2
	maxKanaTypos = 1
)

var stripped = strings.NewReplacer(",", "", ".", "", "-", "", "'", "")

// Normalize returns s as it is compared by Fuzzy.
func Normalize(s string) string {
	return stripped.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Fuzzy judges given against a single expected answer.
//
// Entries of blockList are never accepted, even as a typo, and entries of
// closeList are reported as Close when they would otherwise be rejected.
func Fuzzy(given, expected string, blockList, closeList []string) Result {
	given = Normalize(given)
	expected = Normalize(expected)

	if given == expected {
		return Allow
	}
	if given == "" {
		return Close
	}
	if contains(blockList, given) {
		return Reject
	}

	isKana := kana.ContainsKana(expected)
	if !isKana && utf8.RuneCountInString(given) <= shortAnswer && utf8.RuneCountInString(expected) <= shortAnswer {
		return Reject
	}
	if isKana && strings.ContainsFunc(given, isLatinOrSpace) {
		return KanaExpected
	}

	if isKana {
		if Levenshtein(kana.ToLatin(given), kana.ToLatin(expected)) <= maxKanaTypos {
			return Close
		}
	} else if Levenshtein(given, expected) <= maxTypos &&
		utf8.RuneCountInString(given) > shortAnswer && utf8.RuneCountInString(expected) > shortAnswer {
		return AllowWithTypo
	}

	if contains(closeList, given) {
		return Close
	}
	return Reject
}

// Card judges given against the back of c and each of its synonyms, using
// the card's block and close lists, and returns the highest priority result.
func Card(given string, c flashcards.Card) Result {
	out := Reject
	for _, want := range c.Answers() {
		out = out.Reduce(Fuzzy(given, want, c.BlockList, c.CloseList))
	}
	return out
}

func contains(list []string, normalized string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return Normalize(s) == normalized
	})
}

func isLatinOrSpace(r rune) bool {
	return (r >= 'a' && r <= 'z') || unicode.IsSpace(r)
}
