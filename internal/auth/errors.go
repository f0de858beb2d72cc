package auth

import "errors"

var (
	// ErrUserNotFound signals that no account exists for the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.New("no token provided")
	// ErrInvalidToken covers malformed, tampered, and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)
