package flashcards

import (
	"testing"
	"time"
)

func TestForecast(t *testing.T) {
	s := mustDefaultSystem(t)
	a := time.Date(2025, 6, 15, 10, 5, 0, 0, time.UTC)
	b := time.Date(2025, 6, 15, 10, 55, 0, 0, time.UTC)
	groups := []CardGroup{
		reviewedAt(1, a),
		reviewedAt(1, b), // same hour bucket as a
		reviewedAt(2, a),
		reviewedAt(0, a),  // lessons
		reviewedAt(42, a), // outside table
	}
	got := s.Forecast(groups)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if want := time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC); !got[0].Time.Equal(want) || got[0].Count != 2 {
		t.Errorf("entry 0 = %+v, want %v x2", got[0], want)
	}
	if want := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC); !got[1].Time.Equal(want) || got[1].Count != 1 {
		t.Errorf("entry 1 = %+v, want %v x1", got[1], want)
	}
}

func TestMergeForecast(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return now.Add(time.Duration(n) * time.Hour) }

	custom := []ForecastEntry{{Time: h(-1), Count: 9}, {Time: h(2), Count: 1}, {Time: h(5), Count: 2}}
	provider := []ForecastEntry{{Time: h(0), Count: 7}, {Time: h(2), Count: 3}, {Time: h(168), Count: 1}, {Time: h(169), Count: 4}}

	got := MergeForecast(now, 7*24*time.Hour, 4, custom, provider)
	want := []ForecastEntry{
		{Time: h(2), Count: 4, Total: 8},
		{Time: h(5), Count: 2, Total: 10},
		{Time: h(168), Count: 1, Total: 11},
	}
	if len(got) != len(want) {
		t.Fatalf("MergeForecast = %+v, want %+v", got, want)
	}
	for i := range want {
		if !got[i].Time.Equal(want[i].Time) || got[i].Count != want[i].Count || got[i].Total != want[i].Total {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMergeForecastEmpty(t *testing.T) {
	if got := MergeForecast(t0, time.Hour, 3); len(got) != 0 {
		t.Errorf("MergeForecast() = %v, want empty", got)
	}
}

func TestStageCounts(t *testing.T) {
	got := StageCounts([]int{1, 1, 3, 8, 1})
	if got[1] != 3 || got[3] != 1 || got[8] != 1 || len(got) != 3 {
		t.Errorf("StageCounts = %v", got)
	}
}
