package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrCustomerAlreadySet means another request stored a billing customer first.
	ErrCustomerAlreadySet = errors.New("user already has a billing customer")
)

// OAuth-specific errors
var (
	ErrInvalidState  = errors.New("invalid OAuth state")
	ErrStateNotFound = errors.New("OAuth state not found or expired")
	ErrInvalidCode   = errors.New("invalid OAuth code")
	ErrProviderAPI   = errors.New("OAuth provider API request failed")
)
