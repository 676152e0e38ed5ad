package deck

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/review"
)

var (
	now     = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	account = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	deckID  = uuid.MustParse("dddddddd-0000-0000-0000-000000000001")
	srcA    = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	srcB    = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	srcW    = uuid.MustParse("00000000-0000-0000-0000-0000000000ff")
)

type submitted struct {
	source uuid.UUID
	iid    int64
	counts []int
}

type fakeStore struct {
	deck    Deck
	sources []CardSource
	subs    []submitted
	err     error
}

func (f *fakeStore) Deck(_ context.Context, acct, id uuid.UUID) (Deck, error) {
	if acct != account || id != f.deck.ID {
		return Deck{}, errors.New("not found")
	}
	return f.deck, nil
}

func (f *fakeStore) Sources(context.Context, uuid.UUID) ([]CardSource, error) {
	return f.sources, nil
}

func (f *fakeStore) DefaultSrsSystem(context.Context) (flashcards.SrsSystem, error) {
	return flashcards.NewSrsSystem(flashcards.DefaultSrsSystemID, "Default", flashcards.DefaultStageSeconds)
}

func (f *fakeStore) SubmitReview(_ context.Context, _, source uuid.UUID, iid int64, counts []int, _ time.Time) (flashcards.CardGroup, error) {
	f.subs = append(f.subs, submitted{source, iid, counts})
	return flashcards.CardGroup{}, f.err
}

type providerCall struct {
	kind              string
	assignment        int64
	meaning, readings int
}

type fakeProvider struct {
	lessons  []flashcards.CardGroup
	reviews  []flashcards.CardGroup
	forecast []flashcards.ForecastEntry
	calls    []providerCall
}

func (f *fakeProvider) Lessons(context.Context, uuid.UUID, uuid.UUID) ([]flashcards.CardGroup, error) {
	return f.lessons, nil
}

func (f *fakeProvider) Reviews(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]flashcards.CardGroup, error) {
	return f.reviews, nil
}

func (f *fakeProvider) Forecast(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]flashcards.ForecastEntry, error) {
	return f.forecast, nil
}

func (f *fakeProvider) CreateReview(_ context.Context, _, _ uuid.UUID, a int64, m, r int) error {
	f.calls = append(f.calls, providerCall{"review", a, m, r})
	return nil
}

func (f *fakeProvider) StartAssignment(_ context.Context, _, _ uuid.UUID, a int64) error {
	f.calls = append(f.calls, providerCall{kind: "start", assignment: a})
	return nil
}

func group(iid int64, stage int, last *time.Time) flashcards.CardGroup {
	return flashcards.CardGroup{IID: iid, Cards: []flashcards.Card{{Front: "f", Back: "b"}}, Stage: stage, LastReviewed: last}
}

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func fixture() (*fakeStore, *fakeProvider, *Service) {
	a := CustomSource{ID: srcA, Name: "A", Groups: []flashcards.CardGroup{
		group(1, 0, nil),
		group(2, 0, nil),
		group(3, 1, ago(5*time.Hour)),  // due
		group(4, 1, ago(1*time.Hour)),  // due at 13:00
		group(5, 5, ago(10*time.Hour)), // due in ~6 days
	}}
	b := CustomSource{ID: srcB, Name: "B", Groups: []flashcards.CardGroup{
		group(10, 0, nil),
		group(11, 2, ago(9*time.Hour)), // due
	}}
	w := WanikaniSource{ID: srcW, Name: "WK"}
	store := &fakeStore{
		deck:    Deck{ID: deckID, Name: "Japanese", Sources: []uuid.UUID{srcW, srcA}},
		sources: []CardSource{a, b, w},
	}
	prov := &fakeProvider{
		lessons: []flashcards.CardGroup{group(100, 0, nil), group(101, 0, nil), group(102, 0, nil), group(103, 0, nil)},
		reviews: []flashcards.CardGroup{group(200, 4, nil)},
		forecast: []flashcards.ForecastEntry{
			{Time: now.Add(3 * time.Hour), Count: 2},
			{Time: now.Add(-time.Hour), Count: 9},
		},
	}
	svc := NewService(store, Config{
		Provider: prov,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return now },
	})
	return store, prov, svc
}

func iids(items []flashcards.ReviewItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.Group.IID
	}
	return out
}

// --- Items ---

func TestReviewItems(t *testing.T) {
	_, _, svc := fixture()
	items, err := svc.ReviewItems(context.Background(), account, deckID)
	if err != nil {
		t.Fatalf("ReviewItems: %v", err)
	}
	if got, want := iids(items), []int64{200, 3}; !slices.Equal(got, want) {
		t.Errorf("review iids = %v, want %v", got, want)
	}
	if items[0].Source.Type != flashcards.Wanikani || items[1].Source.ID != srcA {
		t.Errorf("sources = %+v, %+v", items[0].Source, items[1].Source)
	}
}

func TestLessonItems(t *testing.T) {
	_, _, svc := fixture()
	lessons, err := svc.LessonItems(context.Background(), account, deckID)
	if err != nil {
		t.Fatalf("LessonItems: %v", err)
	}
	if lessons.Total != 6 {
		t.Errorf("Total = %d, want 6", lessons.Total)
	}
	if got, want := iids(lessons.Items), []int64{100, 101, 102, 103, 1}; !slices.Equal(got, want) {
		t.Errorf("lesson iids = %v, want %v", got, want)
	}
}

func TestLessonItemsFewerThanBatch(t *testing.T) {
	store, prov, svc := fixture()
	prov.lessons = nil
	store.deck.Sources = []uuid.UUID{srcB}
	lessons, err := svc.LessonItems(context.Background(), account, deckID)
	if err != nil {
		t.Fatalf("LessonItems: %v", err)
	}
	if lessons.Total != 1 || !slices.Equal(iids(lessons.Items), []int64{10}) {
		t.Errorf("lessons = %+v", lessons)
	}
}

func TestMissingSource(t *testing.T) {
	store, _, svc := fixture()
	store.deck.Sources = append(store.deck.Sources, uuid.New())
	if _, err := svc.ReviewItems(context.Background(), account, deckID); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("ReviewItems = %v, want ErrSourceMissing", err)
	}
}

func TestNoProvider(t *testing.T) {
	store, _, _ := fixture()
	svc := NewService(store, Config{Now: func() time.Time { return now }})
	if _, err := svc.ReviewItems(context.Background(), account, deckID); !errors.Is(err, ErrNoProvider) {
		t.Errorf("ReviewItems = %v, want ErrNoProvider", err)
	}
}

// --- Overview ---

func TestOverview(t *testing.T) {
	_, _, svc := fixture()
	ov, err := svc.Overview(context.Background(), account, deckID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.Name != "Japanese" {
		t.Errorf("Name = %q", ov.Name)
	}
	if len(ov.Sources) != 2 || ov.Sources[0].ID != srcW || ov.Sources[1].ID != srcA {
		t.Errorf("Sources = %+v", ov.Sources)
	}
	if len(ov.UnaddedSources) != 1 || ov.UnaddedSources[0].ID != srcB {
		t.Errorf("UnaddedSources = %+v", ov.UnaddedSources)
	}
	if ov.Lessons != 6 || ov.Reviews != 2 {
		t.Errorf("Lessons = %d, Reviews = %d; want 6, 2", ov.Lessons, ov.Reviews)
	}
	if ov.ReviewsPerStage[1] != 1 || ov.ReviewsPerStage[4] != 1 {
		t.Errorf("ReviewsPerStage = %v", ov.ReviewsPerStage)
	}

	// group 4: reviewed 09:00 + 4h = 13:00, provider 2 at 13:00,
	// group 5: reviewed 00:00 + 167h. Group 3 is due now and excluded.
	want := []flashcards.ForecastEntry{
		{Time: now.Add(3 * time.Hour), Count: 3, Total: 5},
		{Time: now.Add(-10*time.Hour + 167*time.Hour), Count: 1, Total: 6},
	}
	if len(ov.Forecast) != len(want) {
		t.Fatalf("Forecast = %+v, want %+v", ov.Forecast, want)
	}
	for i := range want {
		got := ov.Forecast[i]
		if !got.Time.Equal(want[i].Time) || got.Count != want[i].Count || got.Total != want[i].Total {
			t.Errorf("Forecast[%d] = %+v, want %+v", i, got, want[i])
		}
	}
}

// --- Submitter ---

func TestSubmitterCustom(t *testing.T) {
	store, _, svc := fixture()
	submit := svc.Submitter(account, review.ModeReview)
	err := submit(context.Background(), review.Submission{
		Source:         CustomSource{ID: srcA}.Ref(),
		IID:            3,
		TimesIncorrect: []int{2, 0},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(store.subs) != 1 || store.subs[0].iid != 3 || !slices.Equal(store.subs[0].counts, []int{2, 0}) {
		t.Errorf("store submissions = %+v", store.subs)
	}

	store.err = errors.New("db down")
	if err := submit(context.Background(), review.Submission{Source: CustomSource{ID: srcA}.Ref(), IID: 4, TimesIncorrect: []int{0}}); err == nil {
		t.Error("store error not returned")
	}
}

func TestSubmitterCustomLesson(t *testing.T) {
	store, _, svc := fixture()
	submit := svc.Submitter(account, review.ModeLesson)
	if err := submit(context.Background(), review.Submission{Source: CustomSource{ID: srcB}.Ref(), IID: 10, TimesIncorrect: []int{3, 1}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !slices.Equal(store.subs[0].counts, []int{0, 0}) {
		t.Errorf("lesson counts = %v, want zeros", store.subs[0].counts)
	}
}

func TestSubmitterWanikani(t *testing.T) {
	_, prov, svc := fixture()
	ref := WanikaniSource{ID: srcW}.Ref()
	ctx := context.Background()

	svc.Submitter(account, review.ModeReview)(ctx, review.Submission{Source: ref, IID: 200, TimesIncorrect: []int{1, 2}})
	svc.Submitter(account, review.ModeReview)(ctx, review.Submission{Source: ref, IID: 201, TimesIncorrect: []int{3}})
	svc.Submitter(account, review.ModeLesson)(ctx, review.Submission{Source: ref, IID: 100, TimesIncorrect: []int{0, 0}})

	want := []providerCall{
		{"review", 200, 1, 2},
		{"review", 201, 3, 0},
		{kind: "start", assignment: 100},
	}
	if !slices.Equal(prov.calls, want) {
		t.Errorf("provider calls = %+v, want %+v", prov.calls, want)
	}
}

func TestSubmitterUnknownType(t *testing.T) {
	store, prov, svc := fixture()
	err := svc.Submitter(account, review.ModeReview)(context.Background(), review.Submission{
		Source: flashcards.SourceRef{ID: srcA, Type: flashcards.SourceType(42)},
		IID:    1,
	})
	if err != nil {
		t.Errorf("unknown type submit = %v, want nil", err)
	}
	if len(store.subs) != 0 || len(prov.calls) != 0 {
		t.Error("unknown type was routed")
	}
}

// --- Sources ---

func TestDecodeSource(t *testing.T) {
	for _, src := range []CardSource{
		CustomSource{ID: srcA, Name: "A", Groups: []flashcards.CardGroup{group(1, 0, nil)}},
		WanikaniSource{ID: srcW, Name: "WK"},
	} {
		data, err := json.Marshal(src)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		got, err := DecodeSource(data)
		if err != nil {
			t.Fatalf("DecodeSource(%s): %v", data, err)
		}
		if got.Ref() != src.Ref() {
			t.Errorf("DecodeSource(%s).Ref() = %+v, want %+v", data, got.Ref(), src.Ref())
		}
	}
	if _, err := DecodeSource([]byte(`{"id":"` + srcA.String() + `"}`)); !errors.Is(err, flashcards.ErrInvalidSourceType) {
		t.Errorf("untagged source = %v, want ErrInvalidSourceType", err)
	}
}
