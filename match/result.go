package match

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidResult is returned when decoding an unknown result name.
var ErrInvalidResult = errors.New("match: invalid result")

// Result is the judgement of one answer.
//
// Results are ordered by priority so that the most permissive judgement across
// a card's answers wins. KanaExpected ranks highest as it is a requirement on
// the input mode rather than a correctness judgement.
type Result int

const (
	Reject        Result = iota + 1 // Wrong answer.
	Close                           // Not judged; the user should try again.
	AllowWithTypo                   // Accepted, but the user should check for typos.
	Allow                           // Accepted.
	KanaExpected                    // Not judged; the answer must be typed in kana.
)

var (
	resultNames = [...]string{
		Reject:        "reject",
		Close:         "close",
		AllowWithTypo: "allow_with_typo",
		Allow:         "allow",
		KanaExpected:  "kana_expected",
	}
	resultByName = map[string]Result{
		"reject":          Reject,
		"close":           Close,
		"allow_with_typo": AllowWithTypo,
		"allow":           Allow,
		"kana_expected":   KanaExpected,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Result(0)
	_ json.Marshaler           = Result(0)
	_ json.Unmarshaler         = (*Result)(nil)
	_ encoding.TextMarshaler   = Result(0)
	_ encoding.TextUnmarshaler = (*Result)(nil)
)

// IsValid reports whether r is a known result.
func (r Result) IsValid() bool {
	return r >= Reject && r <= KanaExpected
}

// String returns the snake_case name of the result.
// For invalid values it returns "Result(n)".
func (r Result) String() string {
	if r.IsValid() {
		return resultNames[r]
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Accepted reports whether the answer counts as correct.
func (r Result) Accepted() bool {
	return r == Allow || r == AllowWithTypo
}

// Judged reports whether the answer was judged at all. Close and KanaExpected
// leave the card waiting for another attempt.
func (r Result) Judged() bool {
	return r == Allow || r == AllowWithTypo || r == Reject
}

// Reduce combines the results for two candidate answers, keeping the one with
// the higher priority.
func (r Result) Reduce(other Result) Result {
	return max(r, other)
}

// MarshalText implements encoding.TextMarshaler.
func (r Result) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResult, int(r))
	}
	return []byte(resultNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Result) UnmarshalText(text []byte) error {
	v, ok := resultByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidResult, text)
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Result serializes as a JSON string.
func (r Result) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Result) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResult, data)
	}
	return r.UnmarshalText([]byte(s))
}
