package wanikani

import (
	"fmt"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/kana"
)

// Card prompts.
const (
	PromptRadicalMeaning = "Radical Meaning"
	PromptKanjiMeaning   = "Kanji Meaning"
	PromptVocabMeaning   = "Vocab Meaning"
	PromptVocabReading   = "Vocab Reading"
)

// ToCardGroup converts an assignment and its subject into a card group.
// The group's IID is the assignment ID and its stage the assignment's.
// studyMaterial may be nil.
//
// Radicals and kana-only vocabulary produce a meaning card; kanji and
// vocabulary produce a meaning card followed by a reading card.
func ToCardGroup(a Object[Assignment], s Object[Subject], studyMaterial *Object[StudyMaterial]) (flashcards.CardGroup, error) {
	var userSynonyms []string
	if studyMaterial != nil {
		userSynonyms = studyMaterial.Data.MeaningSynonyms
	}
	data := s.Data

	var cards []flashcards.Card
	switch s.Object {
	case TypeRadical:
		c, err := meaningCard(data, radicalFront(data), PromptRadicalMeaning, userSynonyms, nil)
		if err != nil {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", err, s.ID)
		}
		c.Notes = data.MeaningMnemonic
		cards = []flashcards.Card{c}

	case TypeKanji:
		readings := acceptedReadings(data.Readings)
		if len(readings) == 0 {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", ErrNoReading, s.ID)
		}
		front := characters(data)
		meaning, err := meaningCard(data, front, PromptKanjiMeaning, userSynonyms, readings)
		if err != nil {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", err, s.ID)
		}
		reading := readingCard(data, front, kanjiReadingPrompt(readings[0].Type), readings)
		cards = []flashcards.Card{meaning, reading}

	case TypeVocabulary:
		readings := acceptedReadings(data.Readings)
		if len(readings) == 0 {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", ErrNoReading, s.ID)
		}
		front := characters(data)
		meaning, err := meaningCard(data, front, PromptVocabMeaning, userSynonyms, readings)
		if err != nil {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", err, s.ID)
		}
		reading := readingCard(data, front, PromptVocabReading, primaryFirst(readings))
		reading.Audio = audioCues(data.PronunciationAudios)
		cards = []flashcards.Card{meaning, reading}

	case TypeKanaVocabulary:
		meaning, err := meaningCard(data, characters(data), PromptVocabMeaning, userSynonyms, nil)
		if err != nil {
			return flashcards.CardGroup{}, fmt.Errorf("%w: subject %d", err, s.ID)
		}
		cards = []flashcards.Card{meaning}

	default:
		return flashcards.CardGroup{}, fmt.Errorf("%w: %q", ErrUnknownSubject, s.Object)
	}

	return flashcards.CardGroup{IID: a.ID, Cards: cards, Stage: a.Data.SrsStage}, nil
}

// meaningCard builds the card asking for the English meaning. Readings, if
// given, are accepted as "close" answers in their Latin spelling.
func meaningCard(data Subject, front, prompt string, userSynonyms []string, readings []Reading) (flashcards.Card, error) {
	var back string
	var synonyms []string
	found := false
	for _, m := range data.Meanings {
		if m.Primary && !found {
			back, found = m.Meaning, true
			continue
		}
		if !m.Primary {
			synonyms = append(synonyms, m.Meaning)
		}
	}
	if !found {
		return flashcards.Card{}, ErrNoPrimaryMeaning
	}
	synonyms = append(synonyms, userSynonyms...)

	var blockList []string
	for _, aux := range data.AuxiliaryMeanings {
		switch aux.Type {
		case AuxWhitelist:
			synonyms = append(synonyms, aux.Meaning)
		case AuxBlacklist:
			blockList = append(blockList, aux.Meaning)
		}
	}

	var closeList []string
	for _, r := range readings {
		closeList = append(closeList, kana.ToLatin(r.Reading))
	}

	return flashcards.Card{
		Front:     front,
		Back:      back,
		Prompt:    prompt,
		Synonyms:  synonyms,
		BlockList: blockList,
		CloseList: closeList,
		Notes:     withHint(data.MeaningMnemonic, data.MeaningHint),
	}, nil
}

// readingCard builds the card asking for the reading; readings[0] is the
// expected answer and the rest are synonyms.
func readingCard(data Subject, front, prompt string, readings []Reading) flashcards.Card {
	var synonyms []string
	for _, r := range readings[1:] {
		synonyms = append(synonyms, r.Reading)
	}
	return flashcards.Card{
		Front:    front,
		Back:     readings[0].Reading,
		Prompt:   prompt,
		Synonyms: synonyms,
		Notes:    withHint(data.ReadingMnemonic, data.ReadingHint),
	}
}

// radicalFront is the radical's characters, else its inline-styled SVG, else
// its slug. Some radicals only exist as images.
func radicalFront(data Subject) string {
	if data.Characters != nil {
		return *data.Characters
	}
	for _, img := range data.CharacterImages {
		inline := img.Metadata.InlineStyles
		if img.ContentType == "image/svg+xml" && inline != nil && *inline {
			return img.URL
		}
	}
	return data.Slug
}

func characters(data Subject) string {
	if data.Characters != nil {
		return *data.Characters
	}
	return data.Slug
}

func kanjiReadingPrompt(readingType string) string {
	switch readingType {
	case "kunyomi":
		return "Kanji Kun'yomi"
	case "onyomi":
		return "Kanji On'yomi"
	case "nanori":
		return "Kanji Nanori"
	default:
		return "Kanji Reading"
	}
}

func acceptedReadings(readings []Reading) []Reading {
	var out []Reading
	for _, r := range readings {
		if r.AcceptedAnswer {
			out = append(out, r)
		}
	}
	return out
}

// primaryFirst moves the first primary reading to the front, keeping the
// order of the others.
func primaryFirst(readings []Reading) []Reading {
	for i, r := range readings {
		if r.Primary {
			out := make([]Reading, 0, len(readings))
			out = append(out, r)
			out = append(out, readings[:i]...)
			return append(out, readings[i+1:]...)
		}
	}
	return readings
}

// audioCues keeps the Ogg recordings of voice actor 1.
func audioCues(audios []Resource) []flashcards.AudioCue {
	var out []flashcards.AudioCue
	for _, a := range audios {
		if a.Metadata.VoiceActorID != 1 || a.ContentType != "audio/ogg" {
			continue
		}
		out = append(out, flashcards.AudioCue{URL: a.URL, Text: a.Metadata.Pronunciation})
	}
	return out
}

func withHint(mnemonic string, hint *string) string {
	if hint == nil {
		return mnemonic
	}
	return mnemonic + "\n\n" + *hint
}
