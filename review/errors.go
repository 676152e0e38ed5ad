package review

import "errors"

// Sentinel errors for the review package.
var (
	ErrNoItems       = errors.New("review: no items to review")
	ErrInvalidConfig = errors.New("review: invalid session config")
	ErrFinished      = errors.New("review: session finished")
	ErrAnswered      = errors.New("review: presentation already answered")
	ErrNotAnswered   = errors.New("review: presentation not answered")
)
