package wanikani

import (
	"cmp"
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/sky-flux/flashcards"
)

// MaxLevel is the highest WaniKani level. Subjects missing from the cache are
// treated as one level above it, so they are never due.
const MaxLevel = 60

// Account is the local cache of one WaniKani account.
// Study materials are keyed by subject ID; the other maps by object ID.
type Account struct {
	LastUpdated    *time.Time
	User           *Object[User]
	Assignments    map[int64]Object[Assignment]
	Subjects       map[int64]Object[Subject]
	StudyMaterials map[int64]Object[StudyMaterial]
}

// cacheDoc is the serialized form of an Account.
type cacheDoc struct {
	LastUpdated    *time.Time              `json:"last_updated"`
	User           *Object[User]           `json:"user"`
	Assignments    []Object[Assignment]    `json:"assignments"`
	Subjects       []Object[Subject]       `json:"subjects"`
	StudyMaterials []Object[StudyMaterial] `json:"study_materials"`
}

// NewAccount returns an empty account cache.
func NewAccount() *Account {
	return &Account{
		Assignments:    make(map[int64]Object[Assignment]),
		Subjects:       make(map[int64]Object[Subject]),
		StudyMaterials: make(map[int64]Object[StudyMaterial]),
	}
}

// DecodeAccount decodes a cache written by Encode. Empty data gives an empty
// account. Malformed data is logged and also gives an empty account, so a
// corrupt cache never blocks reviews.
func DecodeAccount(data []byte, log *slog.Logger) *Account {
	a := NewAccount()
	if len(data) == 0 {
		return a
	}
	var doc cacheDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("discarding malformed provider cache", "error", err)
		return a
	}
	a.LastUpdated = doc.LastUpdated
	a.User = doc.User
	for _, o := range doc.Assignments {
		a.Assignments[o.ID] = o
	}
	for _, o := range doc.Subjects {
		a.Subjects[o.ID] = o
	}
	for _, o := range doc.StudyMaterials {
		a.StudyMaterials[o.Data.SubjectID] = o
	}
	return a
}

// Encode serializes the account. Objects are written in ID order.
func (a *Account) Encode() ([]byte, error) {
	doc := cacheDoc{
		LastUpdated:    a.LastUpdated,
		User:           a.User,
		Assignments:    sortedValues(a.Assignments),
		Subjects:       sortedValues(a.Subjects),
		StudyMaterials: sortedValues(a.StudyMaterials),
	}
	return json.Marshal(doc)
}

// PutAssignment stores an updated assignment.
func (a *Account) PutAssignment(o Object[Assignment]) {
	a.Assignments[o.ID] = o
}

// Lessons returns the assignments not yet started, ordered the way WaniKani
// teaches them: by level, then radicals before kanji before vocabulary, then
// by subject ID. Assignments whose subject is not cached are skipped.
func (a *Account) Lessons() []Object[Assignment] {
	var out []Object[Assignment]
	for _, o := range a.Assignments {
		if o.Data.SrsStage != 0 {
			continue
		}
		if _, ok := a.Subjects[o.Data.SubjectID]; !ok {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(x, y Object[Assignment]) int {
		return compareSubjects(a.Subjects[x.Data.SubjectID], a.Subjects[y.Data.SubjectID])
	})
	return out
}

// Reviews returns the assignments available at now whose subject level the
// user has reached, in assignment ID order.
func (a *Account) Reviews(now time.Time) []Object[Assignment] {
	var out []Object[Assignment]
	for _, o := range a.Assignments {
		at := o.Data.AvailableAt
		if at == nil || at.After(now) || !a.unlocked(o) {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(x, y Object[Assignment]) int { return cmp.Compare(x.ID, y.ID) })
	return out
}

// Forecast counts the unlocked assignments becoming available after now,
// bucketed by availability time.
func (a *Account) Forecast(now time.Time) []flashcards.ForecastEntry {
	counts := make(map[time.Time]int)
	for _, o := range a.Assignments {
		at := o.Data.AvailableAt
		if at == nil || !at.After(now) || !a.unlocked(o) {
			continue
		}
		counts[at.UTC()]++
	}
	out := make([]flashcards.ForecastEntry, 0, len(counts))
	for t, n := range counts {
		out = append(out, flashcards.ForecastEntry{Time: t, Count: n})
	}
	slices.SortFunc(out, func(x, y flashcards.ForecastEntry) int { return x.Time.Compare(y.Time) })
	return out
}

// CardGroups converts assignments into card groups. Assignments whose
// subject is missing or cannot be converted are logged and skipped.
func (a *Account) CardGroups(assignments []Object[Assignment], log *slog.Logger) []flashcards.CardGroup {
	if log == nil {
		log = slog.Default()
	}
	out := make([]flashcards.CardGroup, 0, len(assignments))
	for _, o := range assignments {
		subject, ok := a.Subjects[o.Data.SubjectID]
		if !ok {
			log.Warn("assignment subject not cached", "assignment", o.ID, "subject", o.Data.SubjectID)
			continue
		}
		var material *Object[StudyMaterial]
		if m, ok := a.StudyMaterials[o.Data.SubjectID]; ok {
			material = &m
		}
		g, err := ToCardGroup(o, subject, material)
		if err != nil {
			log.Warn("skipping unconvertible subject", "assignment", o.ID, "error", err)
			continue
		}
		out = append(out, g)
	}
	return out
}

func (a *Account) userLevel() int {
	if a.User == nil {
		return MaxLevel
	}
	return a.User.Data.Level
}

func (a *Account) unlocked(o Object[Assignment]) bool {
	level := MaxLevel + 1
	if s, ok := a.Subjects[o.Data.SubjectID]; ok {
		level = s.Data.Level
	}
	return level <= a.userLevel()
}

func compareSubjects(x, y Object[Subject]) int {
	if c := cmp.Compare(x.Data.Level, y.Data.Level); c != 0 {
		return c
	}
	if c := cmp.Compare(subjectRank(x.Object), subjectRank(y.Object)); c != 0 {
		return c
	}
	return cmp.Compare(x.ID, y.ID)
}

func subjectRank(objectType string) int {
	switch objectType {
	case TypeRadical:
		return 0
	case TypeKanji:
		return 1
	case TypeVocabulary:
		return 2
	default:
		return 3
	}
}

func sortedValues[T any](m map[int64]Object[T]) []Object[T] {
	out := make([]Object[T], 0, len(m))
	for _, o := range m {
		out = append(out, o)
	}
	slices.SortFunc(out, func(x, y Object[T]) int { return cmp.Compare(x.ID, y.ID) })
	return out
}
