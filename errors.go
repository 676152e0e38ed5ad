package flashcards

import "errors"

// Sentinel errors for the flashcards package.
// Use errors.Is to check: errors.Is(err, flashcards.ErrInvalidStage)
var (
	ErrInvalidStage          = errors.New("flashcards: invalid srs stage")
	ErrInvalidIncorrectCount = errors.New("flashcards: invalid incorrect count")
	ErrEmptyGroup            = errors.New("flashcards: card group has no cards")
	ErrDuplicateIID          = errors.New("flashcards: duplicate card group iid")
	ErrInvalidStages         = errors.New("flashcards: invalid srs stage table")
	ErrInvalidSourceType     = errors.New("flashcards: invalid card source type")
)
