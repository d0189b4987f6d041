package users

import "errors"

// Lookup and lifecycle errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("user with this email already exists")
	ErrNotApplied   = errors.New("user was not modified")
)

// Input errors that slip past request validation.
var (
	ErrInvalidInput    = errors.New("invalid user data")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Credential errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ErrStore marks persistence failures that have no more specific kind.
var ErrStore = errors.New("user store failure")
