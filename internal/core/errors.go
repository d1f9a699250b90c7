package core

import "errors"

// Credential failures. These are collapsed into a single generic rejection
// at the HTTP boundary.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrUnknownIssuer    = errors.New("unknown issuer")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Infrastructure failures. Safe to retry at the caller's discretion.
var (
	ErrDirectoryUnavailable = errors.New("key directory unavailable")
	ErrKeyGeneration        = errors.New("key generation failed")
	ErrPublish              = errors.New("publishing public key failed")
)

var (
	// ErrNotFound is returned by directories and the key registry when no entry exists.
	// It is an expected outcome, not a fault.
	ErrNotFound = errors.New("not found")

	ErrInvalidIdentity  = errors.New("invalid service identity")
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// IsCredentialError reports whether err is caused by the presented token
// rather than by the infrastructure.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrUnknownIssuer) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenExpired)
}
