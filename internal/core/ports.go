package core

import "context"

// Directory is a key-value store holding opaque string values.
// Implementations: memory, Redis, Consul KV.
type Directory interface {
	// Name returns the backend type (e.g. "redis").
	Name() string

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. It reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// KeyReader resolves the published public key of a service identity.
type KeyReader interface {
	// ReadKey returns the PEM public key, ErrNotFound or ErrDirectoryUnavailable.
	ReadKey(ctx context.Context, identity ServiceIdentity) (string, error)
}
