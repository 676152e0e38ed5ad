package flashcards

import (
	"fmt"
	"strings"
	"time"
)

// AudioCue is a pronunciation clip for the text it speaks.
type AudioCue struct {
	URL  string `json:"url" yaml:"url"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Card is a single prompt/answer pair. Cards are immutable once presented.
type Card struct {
	Front     string     `json:"front" yaml:"front"` // prompt text or an image URL.
	Back      string     `json:"back" yaml:"back"`   // expected answer.
	Prompt    string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Synonyms  []string   `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	BlockList []string   `json:"block_list,omitempty" yaml:"block_list,omitempty"` // never accepted.
	CloseList []string   `json:"close_list,omitempty" yaml:"close_list,omitempty"` // "almost" answers.
	Notes     string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Audio     []AudioCue `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// Answers returns the back followed by every synonym.
func (c Card) Answers() []string {
	out := make([]string, 0, 1+len(c.Synonyms))
	out = append(out, c.Back)
	return append(out, c.Synonyms...)
}

// IsImage reports whether Front is an image URL rather than text.
func (c Card) IsImage() bool {
	return strings.HasPrefix(c.Front, "https://")
}

// DisplayString returns the front, followed by the prompt label if any.
func (c Card) DisplayString() string {
	if c.Prompt == "" {
		return c.Front
	}
	return c.Front + " - " + c.Prompt
}

// AudioFor returns the audio cue pronouncing text, if the card has one.
func (c Card) AudioFor(text string) (AudioCue, bool) {
	for _, a := range c.Audio {
		if a.Text != "" && a.Text == text {
			return a, true
		}
	}
	return AudioCue{}, false
}

// CardGroup is an ordered set of cards scheduled together.
// Stage and LastReviewed only change together, through Reviewed.
type CardGroup struct {
	IID          int64      `json:"iid" yaml:"iid"`
	Cards        []Card     `json:"cards" yaml:"cards"`
	Stage        int        `json:"srs_stage" yaml:"srs_stage"`
	LastReviewed *time.Time `json:"last_reviewed" yaml:"last_reviewed,omitempty"` // nil before first review.
}

// Validate checks that the group has at least one card and a usable stage.
func (g CardGroup) Validate() error {
	if len(g.Cards) == 0 {
		return fmt.Errorf("%w: iid %d", ErrEmptyGroup, g.IID)
	}
	if g.Stage < 0 {
		return fmt.Errorf("%w: iid %d, stage %d", ErrInvalidStage, g.IID, g.Stage)
	}
	return nil
}

// Reviewed returns a copy of the group moved to stage, last reviewed at at.
func (g CardGroup) Reviewed(stage int, at time.Time) CardGroup {
	out := g.clone()
	out.Stage = stage
	out.LastReviewed = &at
	return out
}

// clone returns a copy that shares no slices or pointers with g.
func (g CardGroup) clone() CardGroup {
	out := g
	out.Cards = append([]Card(nil), g.Cards...)
	if g.LastReviewed != nil {
		v := *g.LastReviewed
		out.LastReviewed = &v
	}
	return out
}

// CheckUniqueIIDs returns ErrDuplicateIID if two groups share an iid.
func CheckUniqueIIDs(groups []CardGroup) error {
	seen := make(map[int64]struct{}, len(groups))
	for _, g := range groups {
		if _, ok := seen[g.IID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateIID, g.IID)
		}
		seen[g.IID] = struct{}{}
	}
	return nil
}

// MigrateGroups merges edited groups with their stored versions.
// Cards come from requested; stage and last review carry over from the
// existing group with the same iid. New iids start in lessons.
func MigrateGroups(requested, existing []CardGroup) []CardGroup {
	byIID := make(map[int64]CardGroup, len(existing))
	for _, g := range existing {
		byIID[g.IID] = g
	}
	out := make([]CardGroup, len(requested))
	for i, g := range requested {
		merged := CardGroup{IID: g.IID, Cards: append([]Card(nil), g.Cards...)}
		if old, ok := byIID[g.IID]; ok {
			merged.Stage = old.Stage
			if old.LastReviewed != nil {
				v := *old.LastReviewed
				merged.LastReviewed = &v
			}
		}
		out[i] = merged
	}
	return out
}
