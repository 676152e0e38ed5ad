package flashcards

import (
	"slices"
	"time"
)

// ForecastEntry counts the groups becoming due at Time.
// Total is the running number of due groups once this bucket arrives; it is
// only filled in by MergeForecast.
type ForecastEntry struct {
	Time  time.Time `json:"time"`
	Count int       `json:"count"`
	Total int       `json:"total,omitempty"`
}

// Forecast buckets groups by AvailableAt and counts each bucket.
// Groups without availability are skipped. Entries are sorted by time.
func (s SrsSystem) Forecast(groups []CardGroup) []ForecastEntry {
	counts := make(map[time.Time]int)
	for _, g := range groups {
		at, ok := s.AvailableAt(g)
		if !ok {
			continue
		}
		counts[at]++
	}
	return sortedEntries(counts)
}

// MergeForecast combines per-source forecasts into one. Only buckets in
// (now, now+window] are kept; counts for the same bucket are summed. Totals
// accumulate from base, the number of groups already due at now.
func MergeForecast(now time.Time, window time.Duration, base int, forecasts ...[]ForecastEntry) []ForecastEntry {
	end := now.Add(window)
	counts := make(map[time.Time]int)
	for _, f := range forecasts {
		for _, e := range f {
			t := e.Time.UTC()
			if !t.After(now) || t.After(end) {
				continue
			}
			counts[t] += e.Count
		}
	}
	out := sortedEntries(counts)
	total := base
	for i := range out {
		total += out[i].Count
		out[i].Total = total
	}
	return out
}

// StageCounts returns how many groups sit at each stage.
func StageCounts(stages []int) map[int]int {
	out := make(map[int]int)
	for _, s := range stages {
		out[s]++
	}
	return out
}

func sortedEntries(counts map[time.Time]int) []ForecastEntry {
	out := make([]ForecastEntry, 0, len(counts))
	for t, n := range counts {
		out = append(out, ForecastEntry{Time: t, Count: n})
	}
	slices.SortFunc(out, func(a, b ForecastEntry) int {
		return a.Time.Compare(b.Time)
	})
	return out
}
