package core

import "errors"

// Identity errors. These are expected domain outcomes, returned as
// typed results. The HTTP layer collapses ErrAccountNotFound and
// ErrInvalidCredentials into one generic response so callers cannot
// probe which emails are registered.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateIdentity  = errors.New("email or display name already registered") // 409 Conflict
)

// Federation errors.
var (
	ErrProviderUnavailable = errors.New("identity provider unavailable") // 503
	ErrEmailMissing        = errors.New("provider profile has no email")
	ErrEmailUnverified     = errors.New("provider has not verified the email")
)

// Session errors.
var (
	ErrInvalidToken    = errors.New("invalid session token")  // 401
	ErrSessionNotFound = errors.New("session not found")      // 401
	ErrSessionExpired  = errors.New("session expired")        // 401
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// Validation errors (client input).
var (
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrPasswordTooLong     = errors.New("password is too long")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrInvalidEmail        = errors.New("invalid email format")
)

// Infrastructure errors. Always wrapped with context at the point of
// failure, logged internally, and surfaced to callers as a generic
// failure without internal detail.
var (
	ErrStorageFailure = errors.New("storage failure")
	ErrHashingFailure = errors.New("password hashing failure")
)

// Post errors.
var (
	ErrPostNotFound = errors.New("post not found") // 404
)
