package deck

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
)

// SourceView names a source without its cards.
type SourceView struct {
	ID   uuid.UUID             `json:"id"`
	Name string                `json:"name"`
	Type flashcards.SourceType `json:"type"`
}

// Overview summarizes a deck for its landing page.
type Overview struct {
	Name            string                     `json:"name"`
	Sources         []SourceView               `json:"sources"`
	UnaddedSources  []SourceView               `json:"unadded_sources"`
	Lessons         int                        `json:"lessons"`
	Reviews         int                        `json:"reviews"`
	ReviewsPerStage map[int]int                `json:"reviews_per_stage"`
	Forecast        []flashcards.ForecastEntry `json:"review_forecast"`
}

// Overview counts the deck's lessons and due reviews and forecasts the
// reviews of the coming window, with running totals starting from the
// reviews due now.
func (s *Service) Overview(ctx context.Context, account, deckID uuid.UUID) (Overview, error) {
	d, added, unadded, err := s.deckSources(ctx, account, deckID)
	if err != nil {
		return Overview{}, err
	}
	sys, err := s.store.DefaultSrsSystem(ctx)
	if err != nil {
		return Overview{}, err
	}
	now := s.now().UTC()

	out := Overview{
		Name:           d.Name,
		Sources:        views(added),
		UnaddedSources: views(unadded),
	}
	var stages []int
	forecasts := make([][]flashcards.ForecastEntry, 0, len(added))
	for _, src := range added {
		lessons, err := s.lessons(ctx, account, src)
		if err != nil {
			return Overview{}, err
		}
		out.Lessons += len(lessons)

		reviews, err := s.reviews(ctx, account, src, sys, now)
		if err != nil {
			return Overview{}, err
		}
		for _, g := range reviews {
			stages = append(stages, g.Stage)
		}

		f, err := s.forecast(ctx, account, src, sys, now)
		if err != nil {
			return Overview{}, err
		}
		forecasts = append(forecasts, f)
	}
	out.Reviews = len(stages)
	out.ReviewsPerStage = flashcards.StageCounts(stages)
	out.Forecast = flashcards.MergeForecast(now, s.forecastWindow, out.Reviews, forecasts...)
	return out, nil
}

func (s *Service) forecast(ctx context.Context, account uuid.UUID, src CardSource, sys flashcards.SrsSystem, now time.Time) ([]flashcards.ForecastEntry, error) {
	switch src := src.(type) {
	case CustomSource:
		return sys.Forecast(src.Groups), nil
	case WanikaniSource:
		if s.provider == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoProvider, src.ID)
		}
		return s.provider.Forecast(ctx, account, src.ID, now)
	}
	return nil, fmt.Errorf("%w: %v", flashcards.ErrInvalidSourceType, src.Ref().Type)
}

func views(sources []CardSource) []SourceView {
	out := make([]SourceView, len(sources))
	for i, src := range sources {
		ref := src.Ref()
		out[i] = SourceView{ID: ref.ID, Name: ref.Name, Type: ref.Type}
	}
	return out
}
