package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/review"
)

// deckFile is the YAML form of an offline deck.
type deckFile struct {
	ID     uuid.UUID              `yaml:"id"`
	Name   string                 `yaml:"name"`
	Groups []flashcards.CardGroup `yaml:"groups"`
}

// book is a loaded deck file. Submissions update it from session goroutines.
type book struct {
	path string

	mu   sync.Mutex
	deck deckFile
}

func loadBook(path string) (*book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	var d deckFile
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", path, err)
	}
	if err := flashcards.CheckUniqueIIDs(d.Groups); err != nil {
		return nil, fmt.Errorf("deck %s: %w", path, err)
	}
	for _, g := range d.Groups {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("deck %s: %w", path, err)
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Name == "" {
		d.Name = path
	}
	return &book{path: path, deck: d}, nil
}

func (b *book) ref() flashcards.SourceRef {
	return flashcards.SourceRef{ID: b.deck.ID, Name: b.deck.Name, Type: flashcards.Custom}
}

// reviews returns the groups due at now.
func (b *book) reviews(sys flashcards.SrsSystem, now time.Time) []flashcards.ReviewItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []flashcards.ReviewItem
	for _, g := range b.deck.Groups {
		if sys.IsUpForReview(g, now) {
			out = append(out, flashcards.ReviewItem{Source: b.ref(), Group: g})
		}
	}
	return out
}

// lessons returns up to limit groups that were never studied, in file order.
func (b *book) lessons(limit int) []flashcards.ReviewItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []flashcards.ReviewItem
	for _, g := range b.deck.Groups {
		if len(out) == limit {
			break
		}
		if flashcards.IsUpForLesson(g) {
			out = append(out, flashcards.ReviewItem{Source: b.ref(), Group: g})
		}
	}
	return out
}

// submitter returns a SubmitFunc that moves submitted groups to their next
// stage, reviewed at now().
func (b *book) submitter(now func() time.Time) review.SubmitFunc {
	return func(_ context.Context, sub review.Submission) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := slices.IndexFunc(b.deck.Groups, func(g flashcards.CardGroup) bool { return g.IID == sub.IID })
		if i < 0 {
			return fmt.Errorf("card group %d is not in %s", sub.IID, b.path)
		}
		stage, err := flashcards.AdjustStage(b.deck.Groups[i].Stage, sub.TimesIncorrect)
		if err != nil {
			return err
		}
		b.deck.Groups[i] = b.deck.Groups[i].Reviewed(stage, now().UTC())
		return nil
	}
}

// save writes the deck back through a temporary file.
func (b *book) save() error {
	b.mu.Lock()
	data, err := yaml.Marshal(b.deck)
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace deck: %w", err)
	}
	return nil
}
