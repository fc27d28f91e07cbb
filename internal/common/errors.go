// Package common defines the sentinel errors shared by the stores, the account
// service and the HTTP layer. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
