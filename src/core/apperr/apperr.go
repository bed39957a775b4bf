// Package apperr defines the error taxonomy shared by the convivial
// services. Handlers map these sentinels to HTTP status codes; services
// wrap them with goerr to attach context values.
package apperr

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound marks lookups of unknown gift/discovery/user ids.
	ErrNotFound = goerr.New("resource not found")

	// ErrForbidden marks actions by a user who is not allowed to perform
	// them, e.g. a non-recipient shaking a gift.
	ErrForbidden = goerr.New("forbidden")

	// ErrRateLimited marks cooldown violations such as a second shake
	// within the same calendar day.
	ErrRateLimited = goerr.New("rate limited")

	// ErrStorageUnavailable marks transient backend failures. Schedulers
	// log and retry; handlers surface 503.
	ErrStorageUnavailable = goerr.New("storage unavailable")

	// ErrValidation marks malformed or self-contradictory input, e.g.
	// gifting a discovery to oneself.
	ErrValidation = goerr.New("validation failed")
)
