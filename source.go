package flashcards

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SourceType discriminates the kinds of card source a deck can hold.
type SourceType int

const (
	Custom   SourceType = iota + 1 // Cards authored by the account owner.
	Wanikani                       // Cards backed by the WaniKani provider.
)

var (
	sourceTypeNames  = [...]string{Custom: "custom", Wanikani: "wanikani"}
	sourceTypeByName = map[string]SourceType{
		"custom":   Custom,
		"wanikani": Wanikani,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = SourceType(0)
	_ json.Marshaler           = SourceType(0)
	_ json.Unmarshaler         = (*SourceType)(nil)
	_ encoding.TextMarshaler   = SourceType(0)
	_ encoding.TextUnmarshaler = (*SourceType)(nil)
)

// IsValid reports whether t is a known source type.
func (t SourceType) IsValid() bool {
	return t >= Custom && t <= Wanikani
}

// String returns the name of the type ("custom", "wanikani").
// For unknown values it returns "SourceType(n)".
func (t SourceType) String() string {
	if t.IsValid() {
		return sourceTypeNames[t]
	}
	return fmt.Sprintf("SourceType(%d)", int(t))
}

// ParseSourceType returns the source type with the given name.
func ParseSourceType(name string) (SourceType, error) {
	var t SourceType
	err := t.UnmarshalText([]byte(name))
	return t, err
}

// MarshalText implements encoding.TextMarshaler.
func (t SourceType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSourceType, int(t))
	}
	return []byte(sourceTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SourceType) UnmarshalText(text []byte) error {
	v, ok := sourceTypeByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSourceType, text)
	}
	*t = v
	return nil
}

// MarshalJSON implements json.Marshaler. SourceType serializes as a JSON string.
func (t SourceType) MarshalJSON() ([]byte, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (t *SourceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSourceType, data)
	}
	return t.UnmarshalText([]byte(s))
}

// SourceRef identifies the card source a group belongs to, with enough
// information to route a submission back to it.
type SourceRef struct {
	ID   uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Type SourceType `json:"type"`
}

// ReviewItem is the unit submitted for review: one group from one source.
type ReviewItem struct {
	Source SourceRef `json:"source"`
	Group  CardGroup `json:"card_group"`
}
