package flashcards

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSourceTypeString(t *testing.T) {
	tests := []struct {
		t    SourceType
		want string
	}{
		{Custom, "custom"},
		{Wanikani, "wanikani"},
		{SourceType(0), "SourceType(0)"},
		{SourceType(9), "SourceType(9)"},
	}
	for _, tc := range tests {
		if got := tc.t.String(); got != tc.want {
			t.Errorf("SourceType(%d).String() = %q, want %q", int(tc.t), got, tc.want)
		}
	}
}

func TestSourceTypeJSON(t *testing.T) {
	data, err := json.Marshal(SourceRef{Name: "n", Type: Wanikani})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var ref SourceRef
	if err := json.Unmarshal(data, &ref); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ref.Type != Wanikani {
		t.Errorf("Type = %v, want wanikani", ref.Type)
	}

	if _, err := json.Marshal(SourceType(0)); !errors.Is(err, ErrInvalidSourceType) {
		t.Errorf("Marshal invalid = %v, want ErrInvalidSourceType", err)
	}
	var st SourceType
	if err := json.Unmarshal([]byte(`"anki"`), &st); !errors.Is(err, ErrInvalidSourceType) {
		t.Errorf("Unmarshal unknown = %v, want ErrInvalidSourceType", err)
	}
	if err := json.Unmarshal([]byte(`1`), &st); !errors.Is(err, ErrInvalidSourceType) {
		t.Errorf("Unmarshal number = %v, want ErrInvalidSourceType", err)
	}
}

func TestParseSourceType(t *testing.T) {
	got, err := ParseSourceType("custom")
	if err != nil || got != Custom {
		t.Errorf("ParseSourceType(custom) = %v, %v", got, err)
	}
	if _, err := ParseSourceType("Custom"); err == nil {
		t.Error("ParseSourceType should be case sensitive")
	}
}
