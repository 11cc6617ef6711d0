package security

import "errors"

var (
	// ErrEmptySecret is returned when a gate is built without a secret.
	ErrEmptySecret = errors.New("security: shared secret is empty")

	// ErrInvalidHash is returned when a configured token hash cannot be parsed.
	ErrInvalidHash = errors.New("security: invalid token hash")
)
