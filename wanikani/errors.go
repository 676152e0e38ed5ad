package wanikani

import "errors"

// Sentinel errors for the wanikani package.
var (
	ErrNoPrimaryMeaning = errors.New("wanikani: subject has no primary meaning")
	ErrNoReading        = errors.New("wanikani: subject has no accepted reading")
	ErrUnknownSubject   = errors.New("wanikani: unknown subject type")
	ErrNoCredentials    = errors.New("wanikani: no api key for source")
	ErrStatus           = errors.New("wanikani: unexpected response status")
	ErrRateLimited      = errors.New("wanikani: rate limited")
)
