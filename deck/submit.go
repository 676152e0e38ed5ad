package deck

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/review"
)

// Submitter returns the SubmitFunc for a session of account.
//
// Custom sources store the review; lessons submit zero mistakes. WaniKani
// reviews become a provider review with the first card counted as meaning
// and the second as reading, and WaniKani lessons start the assignment.
// Submissions for unknown source types are logged and dropped.
func (s *Service) Submitter(account uuid.UUID, mode review.Mode) review.SubmitFunc {
	return func(ctx context.Context, sub review.Submission) error {
		src := sub.Source
		switch src.Type {
		case flashcards.Custom:
			counts := sub.TimesIncorrect
			if mode == review.ModeLesson {
				counts = make([]int, len(counts))
			}
			_, err := s.store.SubmitReview(ctx, account, src.ID, sub.IID, counts, s.now())
			return err
		case flashcards.Wanikani:
			if s.provider == nil {
				return fmt.Errorf("%w: %s", ErrNoProvider, src.ID)
			}
			if mode == review.ModeLesson {
				return s.provider.StartAssignment(ctx, account, src.ID, sub.IID)
			}
			meaning, reading := 0, 0
			if len(sub.TimesIncorrect) > 0 {
				meaning = sub.TimesIncorrect[0]
			}
			if len(sub.TimesIncorrect) > 1 {
				reading = sub.TimesIncorrect[1]
			}
			return s.provider.CreateReview(ctx, account, src.ID, sub.IID, meaning, reading)
		default:
			s.log.Warn("unknown card source type", "type", src.Type, "source", src.ID, "iid", sub.IID)
			return nil
		}
	}
}
