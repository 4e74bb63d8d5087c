// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by username or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when attempting to create a user with a
	// username that already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login fails. It deliberately does
	// not distinguish an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSession is returned when a session token cannot be resolved to
	// a live, authenticated user. Callers treat it as "not authenticated".
	ErrInvalidSession = errors.New("invalid session")
)
