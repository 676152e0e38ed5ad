// Package flashcards implements the stage-based spaced repetition model used
// by the flashcards review engine.
//
// A [CardGroup] is the unit of scheduling: every card in the group is
// reviewed together and the group carries one mastery stage. Stage 0 means the
// group is still waiting in lessons; higher stages are scheduled by an
// [SrsSystem], an ordered table of intervals indexed by stage.
//
// Basic usage:
//
//	sys, err := flashcards.NewSrsSystem(flashcards.DefaultSrsSystemID, "default", flashcards.DefaultStageSeconds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if sys.IsUpForReview(group, time.Now()) {
//	    stage, err := flashcards.AdjustStage(group.Stage, []int{0, 1})
//	    ...
//	    group = group.Reviewed(stage, time.Now())
//	}
//
// The session scheduler lives in the review subpackage, the answer matcher in
// match, and script transliteration in kana.
package flashcards
