package identity

import "github.com/mauv0809/whack-a-blob/internal/apperr"

var (
	// ErrInvalidSignature is returned when a wallet signature does not recover to the claimed address.
	ErrInvalidSignature = apperr.Authentication("Invalid signature")

	// ErrInvalidToken is returned when the token is malformed or invalid.
	ErrInvalidToken = apperr.Authentication("Invalid token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = apperr.Authentication("Token has expired")

	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = apperr.Authentication("Authentication credentials were not provided")

	ErrAdminRequired = apperr.Forbidden("Admin role required")
)
