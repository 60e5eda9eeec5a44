package domain

import "errors"

// Sentinel errors used across services and handlers. Handlers map these to
// HTTP status codes; the response text stays generic so internals never
// reach clients.
var (
	// ErrValidation marks malformed or missing input. Checked before any
	// storage access.
	ErrValidation = errors.New("invalid input")

	// ErrUsernameTaken is returned by user stores when the username
	// uniqueness constraint fires.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUserNotFound is returned by user stores on a missing record.
	// The auth service folds it into ErrInvalidCredentials before it can
	// reach a response.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password. The two cases must stay indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, forged, and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")

	// ErrBookingNotFound is returned when a booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner is returned when a user touches a booking they do not
	// own. Handlers surface it as not-found so IDs cannot be probed.
	ErrNotOwner = errors.New("booking not owned by caller")
)
