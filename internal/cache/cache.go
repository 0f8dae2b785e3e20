package cache

import (
    "context"
    "time"
)

// RevocationStore records token IDs that are no longer valid. Entries expire
// on their own once the token they shadow would have expired anyway, so the
// store stays bounded. Implementations own their concurrency control.
type RevocationStore interface {
    // Revoke marks tokenID invalid until the given time. Revoking an already
    // revoked ID is a no-op; a time in the past is ignored.
    Revoke(ctx context.Context, tokenID string, until time.Time) error
    IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserCache is a short-TTL cache of serialized user records, consulted
// before the database on every authenticated request.
type UserCache interface {
    Put(ctx context.Context, key string, payload []byte) error
    Get(ctx context.Context, key string) ([]byte, error)
    Delete(ctx context.Context, key string) error
}

// ErrCacheMiss is returned by UserCache.Get when the key is absent.
type cacheMissError struct{}

func (cacheMissError) Error() string { return "cache miss" }

var ErrCacheMiss error = cacheMissError{}
