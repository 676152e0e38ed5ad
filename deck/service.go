// Package deck composes card sources into decks and gathers their lessons,
// reviews and forecasts for a session.
//
// Sources come in two kinds. Custom sources keep their card groups in the
// store; WaniKani sources are served by a Provider. Every operation that
// treats them differently switches on the source type.
package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
)

// Sentinel errors for the deck package.
var (
	ErrNoProvider    = errors.New("deck: no provider for source")
	ErrSourceMissing = errors.New("deck: deck references a missing source")
)

const (
	// DefaultLessonBatch is how many lessons are taught in one session.
	DefaultLessonBatch = 5
	// DefaultForecastWindow is how far ahead the overview forecasts reviews.
	DefaultForecastWindow = 7 * 24 * time.Hour
)

// Deck is an ordered selection of an account's sources.
type Deck struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Sources []uuid.UUID `json:"source_ids"`
}

// Store is the persistence the service reads decks and sources from.
type Store interface {
	Deck(ctx context.Context, account, id uuid.UUID) (Deck, error)
	Sources(ctx context.Context, account uuid.UUID) ([]CardSource, error)
	DefaultSrsSystem(ctx context.Context) (flashcards.SrsSystem, error)
	SubmitReview(ctx context.Context, account, source uuid.UUID, iid int64, timesIncorrect []int, now time.Time) (flashcards.CardGroup, error)
}

// Provider serves the card groups of WaniKani sources.
type Provider interface {
	Lessons(ctx context.Context, account, source uuid.UUID) ([]flashcards.CardGroup, error)
	Reviews(ctx context.Context, account, source uuid.UUID, now time.Time) ([]flashcards.CardGroup, error)
	Forecast(ctx context.Context, account, source uuid.UUID, now time.Time) ([]flashcards.ForecastEntry, error)
	CreateReview(ctx context.Context, account, source uuid.UUID, assignment int64, meaningIncorrect, readingIncorrect int) error
	StartAssignment(ctx context.Context, account, source uuid.UUID, assignment int64) error
}

// Config configures a Service.
// Zero values produce sensible defaults; see field comments.
type Config struct {
	LessonBatch    int              // zero → DefaultLessonBatch
	ForecastWindow time.Duration    // zero → DefaultForecastWindow
	Provider       Provider         // nil → WaniKani sources fail with ErrNoProvider
	Logger         *slog.Logger     // nil → slog.Default()
	Now            func() time.Time // nil → time.Now
}

// Service gathers session items for decks and routes submissions back to
// their sources.
type Service struct {
	store          Store
	provider       Provider
	lessonBatch    int
	forecastWindow time.Duration
	log            *slog.Logger
	now            func() time.Time
}

// NewService returns a Service over store.
func NewService(store Store, cfg Config) *Service {
	s := &Service{
		store:          store,
		provider:       cfg.Provider,
		lessonBatch:    cfg.LessonBatch,
		forecastWindow: cfg.ForecastWindow,
		log:            cfg.Logger,
		now:            cfg.Now,
	}
	if s.lessonBatch <= 0 {
		s.lessonBatch = DefaultLessonBatch
	}
	if s.forecastWindow <= 0 {
		s.forecastWindow = DefaultForecastWindow
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ReviewItems returns every group of the deck that is due now.
func (s *Service) ReviewItems(ctx context.Context, account, deckID uuid.UUID) ([]flashcards.ReviewItem, error) {
	_, added, _, err := s.deckSources(ctx, account, deckID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sys, err := s.store.DefaultSrsSystem(ctx)
	if err != nil {
		return nil, err
	}

	var items []flashcards.ReviewItem
	for _, src := range added {
		groups, err := s.reviews(ctx, account, src, sys, now)
		if err != nil {
			return nil, err
		}
		items = appendItems(items, src.Ref(), groups, -1)
	}
	return items, nil
}

// Lessons is the result of LessonItems.
type Lessons struct {
	Total int                     `json:"total"` // lessons available across the deck.
	Items []flashcards.ReviewItem `json:"items"` // the next batch, in deck order.
}

// LessonItems returns the deck's lesson count and its next batch of lessons,
// taken source by source in deck order.
func (s *Service) LessonItems(ctx context.Context, account, deckID uuid.UUID) (Lessons, error) {
	_, added, _, err := s.deckSources(ctx, account, deckID)
	if err != nil {
		return Lessons{}, err
	}

	var out Lessons
	bySource := make([][]flashcards.CardGroup, len(added))
	for i, src := range added {
		groups, err := s.lessons(ctx, account, src)
		if err != nil {
			return Lessons{}, err
		}
		bySource[i] = groups
		out.Total += len(groups)
	}
	for i, src := range added {
		n := min(out.Total, s.lessonBatch) - len(out.Items)
		if n <= 0 {
			break
		}
		out.Items = appendItems(out.Items, src.Ref(), bySource[i], n)
	}
	return out, nil
}

// deckSources resolves a deck's sources. added is in deck order; unadded
// holds the account's other sources in their stored order.
func (s *Service) deckSources(ctx context.Context, account, deckID uuid.UUID) (Deck, []CardSource, []CardSource, error) {
	d, err := s.store.Deck(ctx, account, deckID)
	if err != nil {
		return Deck{}, nil, nil, err
	}
	all, err := s.store.Sources(ctx, account)
	if err != nil {
		return Deck{}, nil, nil, err
	}
	byID := make(map[uuid.UUID]CardSource, len(all))
	for _, src := range all {
		byID[src.Ref().ID] = src
	}

	added := make([]CardSource, 0, len(d.Sources))
	inDeck := make(map[uuid.UUID]bool, len(d.Sources))
	for _, id := range d.Sources {
		src, ok := byID[id]
		if !ok {
			return Deck{}, nil, nil, fmt.Errorf("%w: %s", ErrSourceMissing, id)
		}
		added = append(added, src)
		inDeck[id] = true
	}
	var unadded []CardSource
	for _, src := range all {
		if !inDeck[src.Ref().ID] {
			unadded = append(unadded, src)
		}
	}
	return d, added, unadded, nil
}

func (s *Service) lessons(ctx context.Context, account uuid.UUID, src CardSource) ([]flashcards.CardGroup, error) {
	switch src := src.(type) {
	case CustomSource:
		return src.Lessons(), nil
	case WanikaniSource:
		if s.provider == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoProvider, src.ID)
		}
		return s.provider.Lessons(ctx, account, src.ID)
	}
	return nil, fmt.Errorf("%w: %v", flashcards.ErrInvalidSourceType, src.Ref().Type)
}

func (s *Service) reviews(ctx context.Context, account uuid.UUID, src CardSource, sys flashcards.SrsSystem, now time.Time) ([]flashcards.CardGroup, error) {
	switch src := src.(type) {
	case CustomSource:
		return src.Reviews(sys, now), nil
	case WanikaniSource:
		if s.provider == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoProvider, src.ID)
		}
		return s.provider.Reviews(ctx, account, src.ID, now)
	}
	return nil, fmt.Errorf("%w: %v", flashcards.ErrInvalidSourceType, src.Ref().Type)
}

// appendItems appends up to limit groups as items of ref; limit < 0 appends all.
func appendItems(items []flashcards.ReviewItem, ref flashcards.SourceRef, groups []flashcards.CardGroup, limit int) []flashcards.ReviewItem {
	if limit >= 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	for _, g := range groups {
		items = append(items, flashcards.ReviewItem{Source: ref, Group: g})
	}
	return items
}
