// Package review drives lesson and review sessions.
//
// A Session interleaves a bounded clump of card groups into one stream of
// presentations. A card is presented until it is answered correctly, and once
// every card of a group is finished the group's result is submitted
// asynchronously through the caller's SubmitFunc.
//
//	s, err := review.NewSession(ctx, items, submit, review.Config{})
//	for {
//		p, err := s.Next()
//		if errors.Is(err, review.ErrFinished) {
//			break
//		}
//		j, _ := s.Answer(readInput(p.Card()))
//		...
//	}
//	s.Wait()
package review

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/match"
)

// DefaultClumpSize is the number of groups reviewed concurrently.
const DefaultClumpSize = 10

// Mode selects between reviews and lessons.
type Mode int

const (
	ModeReview Mode = iota // Submit each card's mistakes.
	ModeLesson             // Submit zero mistakes; lessons measure exposure.
)

func (m Mode) String() string {
	switch m {
	case ModeReview:
		return "review"
	case ModeLesson:
		return "lesson"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Submission is the result of one completed group.
type Submission struct {
	Source         flashcards.SourceRef
	IID            int64
	TimesIncorrect []int // one count per card, in card order.
	Mode           Mode
}

// SubmitFunc delivers a completed group to its source. It is called exactly
// once per group, from its own goroutine, and is never retried.
type SubmitFunc func(ctx context.Context, s Submission) error

// Config configures a Session.
// Zero values produce sensible defaults; see field comments.
type Config struct {
	ClumpSize int          // zero → DefaultClumpSize
	Mode      Mode         // zero → ModeReview
	Rand      *rand.Rand   // nil → seeded from the clock
	Logger    *slog.Logger // nil → slog.Default()
}

// Session is a single pass over a set of review items. It is driven by one
// goroutine; only submissions run concurrently.
type Session struct {
	ctx       context.Context
	submit    SubmitFunc
	mode      Mode
	clumpSize int
	rng       *rand.Rand
	log       *slog.Logger

	total     int
	backlog   []*reviewGroup
	working   []*reviewGroup
	completed []*reviewGroup
	current   *Presentation
	done      bool

	wg  sync.WaitGroup
	mu  sync.Mutex
	err error
}

// NewSession shuffles items into a new session. ctx is passed to every
// submission with its cancellation removed, so abandoning a session does
// not abort submissions already in flight.
func NewSession(ctx context.Context, items []flashcards.ReviewItem, submit SubmitFunc, cfg Config) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range items {
		if err := it.Group.Validate(); err != nil {
			return nil, err
		}
	}
	if submit == nil {
		return nil, fmt.Errorf("%w: nil submit func", ErrInvalidConfig)
	}

	clump := cfg.ClumpSize
	if clump == 0 {
		clump = DefaultClumpSize
	}
	if clump < 0 {
		return nil, fmt.Errorf("%w: clump size %d", ErrInvalidConfig, clump)
	}
	if cfg.Mode != ModeReview && cfg.Mode != ModeLesson {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, cfg.Mode)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	backlog := make([]*reviewGroup, len(items))
	for i, it := range items {
		backlog[i] = newReviewGroup(it)
	}
	rng.Shuffle(len(backlog), func(i, j int) {
		backlog[i], backlog[j] = backlog[j], backlog[i]
	})

	return &Session{
		ctx:       context.WithoutCancel(ctx),
		submit:    submit,
		mode:      cfg.Mode,
		clumpSize: clump,
		rng:       rng,
		log:       log,
		total:     len(items),
		backlog:   backlog,
	}, nil
}

// Next returns the next card to present. It first completes the group of the
// previous presentation if all of its cards are finished.
//
// Next returns ErrNotAnswered while the current presentation has no
// judgement, and ErrFinished once every group is complete.
func (s *Session) Next() (*Presentation, error) {
	if s.done {
		return nil, ErrFinished
	}
	if p := s.current; p != nil {
		if p.state == Waiting {
			return nil, ErrNotAnswered
		}
		if p.group.finished() {
			s.complete(p.group)
		}
		s.current = nil
	}

	for len(s.working) < s.clumpSize && len(s.backlog) > 0 {
		s.working = append(s.working, s.backlog[0])
		s.backlog = s.backlog[1:]
	}
	if len(s.working) == 0 {
		s.done = true
		return nil, ErrFinished
	}

	g := s.working[s.rng.Intn(len(s.working))]
	cards := g.unfinished()
	s.current = &Presentation{group: g, card: cards[s.rng.Intn(len(cards))]}
	return s.current, nil
}

// All returns the remaining presentations as a sequence. The caller must
// answer each presentation before advancing; the sequence stops early if it
// does not.
func (s *Session) All() iter.Seq[*Presentation] {
	return func(yield func(*Presentation) bool) {
		for {
			p, err := s.Next()
			if err != nil || !yield(p) {
				return
			}
		}
	}
}

// Current returns the presentation last returned by Next, or nil.
func (s *Session) Current() *Presentation { return s.current }

// Answer judges input against the current card.
//
// Accepted answers finish the card and rejected ones count a mistake. Close
// answers, and Latin input for a kana answer, leave the presentation waiting
// for another attempt.
func (s *Session) Answer(input string) (Judgement, error) {
	p := s.current
	if p == nil {
		return Judgement{}, ErrFinished
	}
	if p.state != Waiting {
		return Judgement{}, ErrAnswered
	}

	c := p.card
	result := match.Card(input, c.card)
	j := Judgement{Result: result, SubmitErr: s.Err()}
	switch result {
	case match.Allow, match.AllowWithTypo:
		c.finished = true
		p.state = Correct
		if a, ok := c.card.AudioFor(strings.TrimSpace(input)); ok {
			j.Audio = &a
		}
		switch {
		case result == match.AllowWithTypo:
			j.Message = MsgTypo
		case len(c.card.Synonyms) > 0:
			j.Message = MsgSynonyms
		}
	case match.Reject:
		c.timesIncorrect++
		p.state = Incorrect
		if c.timesIncorrect > 1 {
			p.showNotes = true
		}
	case match.Close:
		j.Message = MsgClose
	case match.KanaExpected:
		j.Message = MsgKanaExpected
	}
	j.State = p.state
	j.ShowNotes = p.showNotes
	return j, nil
}

// Undo reverts the judgement of the current presentation and leaves it
// waiting for a new answer. The card is not drawn again by itself; a card
// that was finished becomes eligible for drawing once more.
func (s *Session) Undo() error {
	p := s.current
	if p == nil {
		return ErrFinished
	}
	switch p.state {
	case Waiting:
		return ErrNotAnswered
	case Correct:
		p.card.finished = false
	case Incorrect:
		p.card.timesIncorrect--
	}
	p.state = Waiting
	p.showNotes = false
	return nil
}

// Progress returns the number of completed groups and the total.
func (s *Session) Progress() (completed, total int) {
	return len(s.completed), s.total
}

// Wait blocks until every submission started so far has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Err returns the last submission error, if any. It stays set until
// DismissErr is called.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// DismissErr clears the submission error.
func (s *Session) DismissErr() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}

// complete removes g from the working set and submits it.
func (s *Session) complete(g *reviewGroup) {
	for i, w := range s.working {
		if w == g {
			s.working = append(s.working[:i], s.working[i+1:]...)
			break
		}
	}
	s.completed = append(s.completed, g)

	sub := Submission{
		Source:         g.item.Source,
		IID:            g.item.Group.IID,
		TimesIncorrect: g.timesIncorrect(),
		Mode:           s.mode,
	}
	if s.mode == ModeLesson {
		sub.TimesIncorrect = make([]int, len(g.cards))
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.submit(s.ctx, sub); err != nil {
			s.log.Error("submit review",
				"source", sub.Source.ID, "iid", sub.IID, "mode", sub.Mode, "error", err)
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()
}
