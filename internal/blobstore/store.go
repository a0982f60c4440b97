package blobstore

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long artifacts stay downloadable.
const DefaultTTL = time.Hour

// ErrNotFound is returned when a blob never existed or has expired.
var ErrNotFound = errors.New("blob not found or expired")

// Blob is one stored artifact.
type Blob struct {
	// Data is the artifact content.
	Data []byte

	// Name is the suggested download file name, may be empty.
	Name string
}

// Store keeps artifacts keyed by token and format.
type Store interface {
	// Put stores a blob. An existing blob under the same key is replaced.
	//
	// Parameters:
	//   - ctx: Context for the storage call
	//   - token: Opaque artifact group token
	//   - format: Artifact format ("json", "svg", "pdf", ...)
	//   - blob: Content and file name
	//   - ttl: Lifetime; zero or negative uses DefaultTTL
	Put(ctx context.Context, token, format string, blob Blob, ttl time.Duration) error

	// Get loads a blob.
	//
	// Returns:
	//   - Blob: Stored content and file name
	//   - error: ErrNotFound when missing or expired
	Get(ctx context.Context, token, format string) (Blob, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, token, format string) error
}

// Key returns the storage key of an artifact.
func Key(token, format string) string {
	return "pc:" + token + ":" + format
}

func nameKey(token, format string) string {
	return Key(token, format) + ":name"
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}

	return ttl
}
