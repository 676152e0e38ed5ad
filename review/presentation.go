package review

import (
	"fmt"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/kana"
	"github.com/sky-flux/flashcards/match"
)

// Feedback shown to the user after an answer.
const (
	MsgClose        = "So close! Double check your answer for typos."
	MsgKanaExpected = "Give your answer in hiragana."
	MsgTypo         = "Check your answer for typos."
	MsgSynonyms     = "Check notes for additional answers."
)

// State is the input state of a presentation.
type State int

const (
	Waiting   State = iota // No judgement yet.
	Correct                // Last answer accepted.
	Incorrect              // Last answer rejected.
)

var stateNames = [...]string{Waiting: "waiting", Correct: "correct", Incorrect: "incorrect"}

func (s State) String() string {
	if s >= Waiting && s <= Incorrect {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// reviewCard is the in-session state of one card of a group.
type reviewCard struct {
	card           flashcards.Card
	timesIncorrect int
	finished       bool
}

// reviewGroup is one review item while it sits in the working set.
type reviewGroup struct {
	item  flashcards.ReviewItem
	cards []*reviewCard
}

func newReviewGroup(item flashcards.ReviewItem) *reviewGroup {
	g := &reviewGroup{item: item, cards: make([]*reviewCard, len(item.Group.Cards))}
	for i, c := range item.Group.Cards {
		g.cards[i] = &reviewCard{card: c}
	}
	return g
}

func (g *reviewGroup) finished() bool {
	for _, c := range g.cards {
		if !c.finished {
			return false
		}
	}
	return true
}

func (g *reviewGroup) unfinished() []*reviewCard {
	var out []*reviewCard
	for _, c := range g.cards {
		if !c.finished {
			out = append(out, c)
		}
	}
	return out
}

func (g *reviewGroup) timesIncorrect() []int {
	out := make([]int, len(g.cards))
	for i, c := range g.cards {
		out[i] = c.timesIncorrect
	}
	return out
}

// Presentation is one card shown to the user.
type Presentation struct {
	group     *reviewGroup
	card      *reviewCard
	state     State
	showNotes bool
}

// Card returns the card being presented.
func (p *Presentation) Card() flashcards.Card { return p.card.card }

// Source returns the source of the card's group.
func (p *Presentation) Source() flashcards.SourceRef { return p.group.item.Source }

// IID returns the iid of the card's group.
func (p *Presentation) IID() int64 { return p.group.item.Group.IID }

// State returns the input state.
func (p *Presentation) State() State { return p.state }

// ShowNotes reports whether the card's notes should be shown. Notes open
// after the second incorrect answer to a card.
func (p *Presentation) ShowNotes() bool { return p.showNotes }

// TimesIncorrect returns how often the card was answered incorrectly so far.
func (p *Presentation) TimesIncorrect() int { return p.card.timesIncorrect }

// KanaInput reports whether the expected answer is kana, so the input should
// be transliterated as it is typed.
func (p *Presentation) KanaInput() bool {
	return kana.ContainsKana(p.card.card.Back)
}

// Judgement is the outcome of one answer.
type Judgement struct {
	Result    match.Result
	State     State
	Message   string               // feedback for the user; may be empty.
	Audio     *flashcards.AudioCue // pronunciation of an accepted answer.
	ShowNotes bool

	// SubmitErr is the sticky error from an earlier failed submission.
	SubmitErr error
}
