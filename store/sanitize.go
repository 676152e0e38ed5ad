package store

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sky-flux/flashcards"
)

var (
	// textPolicy strips all markup from answer-bearing fields. The result is
	// unescaped again so answers like "fish & chips" still match.
	textPolicy = bluemonday.StrictPolicy()

	// notesPolicy keeps basic formatting in notes.
	notesPolicy = newNotesPolicy()
)

func newNotesPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("ruby", "rt", "rp", "span")
	p.AllowAttrs("class").OnElements("span")
	return p
}

func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func sanitizeList(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = sanitizeText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sanitizeCard cleans card text before it is stored. Front and back are
// required and must survive sanitizing.
func sanitizeCard(c flashcards.Card) (flashcards.Card, error) {
	out := flashcards.Card{
		Front:     sanitizeText(c.Front),
		Back:      sanitizeText(c.Back),
		Prompt:    sanitizeText(c.Prompt),
		Synonyms:  sanitizeList(c.Synonyms),
		BlockList: sanitizeList(c.BlockList),
		CloseList: sanitizeList(c.CloseList),
		Notes:     notesPolicy.Sanitize(c.Notes),
	}
	if out.Front == "" || out.Back == "" {
		return flashcards.Card{}, fmt.Errorf("%w: card front and back are required", ErrInvalid)
	}
	for _, a := range c.Audio {
		if a.URL == "" {
			continue
		}
		out.Audio = append(out.Audio, flashcards.AudioCue{URL: sanitizeText(a.URL), Text: sanitizeText(a.Text)})
	}
	return out, nil
}

// prepareGroups validates and sanitizes groups submitted for a custom source.
func prepareGroups(groups []flashcards.CardGroup) ([]flashcards.CardGroup, error) {
	if err := flashcards.CheckUniqueIIDs(groups); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	out := make([]flashcards.CardGroup, len(groups))
	for i, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		cards := make([]flashcards.Card, len(g.Cards))
		for j, c := range g.Cards {
			clean, err := sanitizeCard(c)
			if err != nil {
				return nil, fmt.Errorf("%w (iid %d, card %d)", err, g.IID, j)
			}
			cards[j] = clean
		}
		out[i] = flashcards.CardGroup{IID: g.IID, Cards: cards}
	}
	return out, nil
}
