package review

import "github.com/sky-flux/flashcards"

// CardSummary is one card of a completed group.
type CardSummary struct {
	Display string `json:"display"`
	Correct bool   `json:"correct"` // answered without mistakes.
}

// GroupSummary is one completed group.
type GroupSummary struct {
	Source flashcards.SourceRef `json:"source"`
	IID    int64                `json:"iid"`
	Cards  []CardSummary        `json:"cards"`
}

// Correct reports whether every card of the group was answered without
// mistakes.
func (g GroupSummary) Correct() bool {
	for _, c := range g.Cards {
		if !c.Correct {
			return false
		}
	}
	return true
}

// Summary lists completed groups in completion order.
type Summary []GroupSummary

// Partition splits the summary into correct and incorrect groups.
func (s Summary) Partition() (correct, incorrect Summary) {
	for _, g := range s {
		if g.Correct() {
			correct = append(correct, g)
		} else {
			incorrect = append(incorrect, g)
		}
	}
	return correct, incorrect
}

// Summary returns the groups completed so far. Lesson sessions report the
// mistakes made in the session even though they submit none.
func (s *Session) Summary() Summary {
	out := make(Summary, len(s.completed))
	for i, g := range s.completed {
		cards := make([]CardSummary, len(g.cards))
		for j, c := range g.cards {
			cards[j] = CardSummary{Display: c.card.DisplayString(), Correct: c.timesIncorrect == 0}
		}
		out[i] = GroupSummary{Source: g.item.Source, IID: g.item.Group.IID, Cards: cards}
	}
	return out
}
