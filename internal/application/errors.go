package application

import "errors"

// Service-level error taxonomy. Handlers translate these into status codes and
// stable messages; anything else is treated as an internal failure.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrStorageDisabled    = errors.New("avatar storage not configured")
)
