package flashcards

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultSrsSystemID identifies the SRS system every account uses by default.
var DefaultSrsSystemID = uuid.MustParse("68c9ed88-ce50-11eb-b8bc-0242ac130003")

// DefaultStageSeconds is the interval table of the default SRS system, in
// seconds per stage. Index 0 (lessons) is never scheduled.
var DefaultStageSeconds = []int{
	0,
	4 * 3600,    // 1: 4h
	8 * 3600,    // 2: 8h
	23 * 3600,   // 3: 1d
	47 * 3600,   // 4: 2d
	167 * 3600,  // 5: 1w
	335 * 3600,  // 6: 2w
	719 * 3600,  // 7: 1mo
	2879 * 3600, // 8: 4mo
}

// SrsSystem is a named table of review intervals indexed by stage.
type SrsSystem struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Stages []time.Duration `json:"stages"`
}

// NewSrsSystem builds a system from a table of second counts.
// The table must have an entry for stage 0 and no negative intervals.
func NewSrsSystem(id uuid.UUID, name string, seconds []int) (SrsSystem, error) {
	if len(seconds) == 0 {
		return SrsSystem{}, fmt.Errorf("%w: empty table", ErrInvalidStages)
	}
	stages := make([]time.Duration, len(seconds))
	for i, s := range seconds {
		if s < 0 {
			return SrsSystem{}, fmt.Errorf("%w: stage %d = %d", ErrInvalidStages, i, s)
		}
		stages[i] = time.Duration(s) * time.Second
	}
	return SrsSystem{ID: id, Name: name, Stages: stages}, nil
}

// Seconds returns the stage table as second counts.
func (s SrsSystem) Seconds() []int {
	out := make([]int, len(s.Stages))
	for i, d := range s.Stages {
		out[i] = int(d / time.Second)
	}
	return out
}

// AdjustStage computes a group's next stage from the number of times each of
// its cards was answered incorrectly in one review.
//
// A clean review promotes by one. Mistakes never demote below stage 1, demote
// by one from stages 2 through 4 and by two above stage 4.
func AdjustStage(stage int, timesIncorrect []int) (int, error) {
	if stage < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	total := 0
	for i, n := range timesIncorrect {
		if n < 0 {
			return 0, fmt.Errorf("%w: card %d = %d", ErrInvalidIncorrectCount, i, n)
		}
		total += n
	}

	switch {
	case total == 0:
		return stage + 1, nil
	case stage <= 1:
		return stage, nil
	case stage > 4:
		return stage - 2, nil
	case stage >= 2:
		return stage - 1, nil
	default:
		panic("flashcards: unreachable stage adjustment")
	}
}

// IsUpForLesson reports whether the group has never left lessons.
func IsUpForLesson(g CardGroup) bool {
	return g.Stage == 0
}

// AvailableAt returns when the group next becomes due: its last review plus
// the stage interval, truncated to the start of the hour. A group that was
// never reviewed counts from the zero time and is immediately due.
//
// Groups in lessons, and groups whose stage has no entry in the table, have
// no availability and report false.
func (s SrsSystem) AvailableAt(g CardGroup) (time.Time, bool) {
	if g.Stage <= 0 || g.Stage >= len(s.Stages) {
		return time.Time{}, false
	}
	var last time.Time
	if g.LastReviewed != nil {
		last = g.LastReviewed.UTC()
	}
	return last.Add(s.Stages[g.Stage]).Truncate(time.Hour), true
}

// IsUpForReview reports whether the group is due at now.
func (s SrsSystem) IsUpForReview(g CardGroup, now time.Time) bool {
	at, ok := s.AvailableAt(g)
	if !ok {
		return false
	}
	return !now.Before(at)
}
