package services

import "errors"

// Validation and authentication failures surfaced to handlers. Handlers map
// these to 4xx responses with errors.Is; anything else is a 500.
var (
	ErrMissingEmail       = errors.New("no email was given")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrUnknownReference marks a recipe payload naming a tag or ingredient
	// the caller does not own.
	ErrUnknownReference = errors.New("unknown tag or ingredient reference")
)

// MinPasswordLength is the shortest password accepted at registration and
// profile update.
const MinPasswordLength = 5
