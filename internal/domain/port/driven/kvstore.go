// Package driven defines secondary port interfaces for external adapters.
package driven

import "context"

// KeyValueStore is the storage-tier contract shared by the credential and
// cache stores. Values are opaque strings; callers encode structured data.
type KeyValueStore interface {
	// Get returns a partial snapshot containing only the requested keys that
	// exist. With no keys it returns every entry.
	Get(ctx context.Context, keys ...string) (map[string]string, error)

	// Set writes or replaces every entry in values. Last write wins.
	Set(ctx context.Context, values map[string]string) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error

	// Clear deletes every entry, including keys this application never wrote.
	Clear(ctx context.Context) error
}

// CredentialStore holds the API key and email. Its writes are replicated to
// every synchronized instance of the user's installation.
type CredentialStore interface {
	KeyValueStore
}

// CacheStore holds device-local derived data. Its contents may be lost at any
// time; losing them only costs latency.
type CacheStore interface {
	KeyValueStore
}
