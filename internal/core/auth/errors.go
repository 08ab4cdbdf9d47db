package auth

import "errors"

// Errors returned by Authenticate. The interceptor maps ErrKeyRevoked to
// PermissionDenied, ErrUnavailable to Unavailable and the rest to Unauthenticated,
// so a caller cannot tell an unknown key from a malformed one.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")
	ErrUnavailable      = errors.New("key store unavailable")
)
