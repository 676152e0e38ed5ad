package deck

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
)

// CardSource is a collection of card groups owned by an account.
// It is one of CustomSource or WanikaniSource; switch on Ref().Type.
type CardSource interface {
	Ref() flashcards.SourceRef
	isCardSource()
}

// CustomSource holds cards authored by the account owner.
type CustomSource struct {
	ID     uuid.UUID              `json:"id"`
	Name   string                 `json:"name"`
	Groups []flashcards.CardGroup `json:"groups"`
}

// WanikaniSource is backed by a WaniKani account. Its cards live in the
// provider cache, not in the source.
type WanikaniSource struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Compile-time interface checks.
var (
	_ CardSource = CustomSource{}
	_ CardSource = WanikaniSource{}
)

func (s CustomSource) Ref() flashcards.SourceRef {
	return flashcards.SourceRef{ID: s.ID, Name: s.Name, Type: flashcards.Custom}
}

func (s WanikaniSource) Ref() flashcards.SourceRef {
	return flashcards.SourceRef{ID: s.ID, Name: s.Name, Type: flashcards.Wanikani}
}

func (CustomSource) isCardSource()   {}
func (WanikaniSource) isCardSource() {}

// Lessons returns the groups that have never been reviewed, in source order.
func (s CustomSource) Lessons() []flashcards.CardGroup {
	var out []flashcards.CardGroup
	for _, g := range s.Groups {
		if flashcards.IsUpForLesson(g) {
			out = append(out, g)
		}
	}
	return out
}

// Reviews returns the groups due at now under sys.
func (s CustomSource) Reviews(sys flashcards.SrsSystem, now time.Time) []flashcards.CardGroup {
	var out []flashcards.CardGroup
	for _, g := range s.Groups {
		if sys.IsUpForReview(g, now) {
			out = append(out, g)
		}
	}
	return out
}

// MarshalJSON encodes the source with its "type" discriminant.
func (s CustomSource) MarshalJSON() ([]byte, error) {
	type plain CustomSource
	return json.Marshal(struct {
		Type flashcards.SourceType `json:"type"`
		plain
	}{flashcards.Custom, plain(s)})
}

// MarshalJSON encodes the source with its "type" discriminant.
func (s WanikaniSource) MarshalJSON() ([]byte, error) {
	type plain WanikaniSource
	return json.Marshal(struct {
		Type flashcards.SourceType `json:"type"`
		plain
	}{flashcards.Wanikani, plain(s)})
}

// DecodeSource decodes a source written by MarshalJSON.
func DecodeSource(data []byte) (CardSource, error) {
	var head struct {
		Type flashcards.SourceType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case flashcards.Custom:
		var s CustomSource
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return s, nil
	case flashcards.Wanikani:
		var s WanikaniSource
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %v", flashcards.ErrInvalidSourceType, head.Type)
}
