package store

import "errors"

// Sentinel errors for the store package.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrInvalid       = errors.New("store: invalid input")
	ErrTypeMismatch  = errors.New("store: card source type mismatch")
	ErrNotCustom     = errors.New("store: reviews can only be submitted to custom sources")
	ErrUnknownSource = errors.New("store: unknown source id")
	ErrGroupsVersion = errors.New("store: unsupported card group format version")
)
