// Package storage provides the client's keyed local store: a sqlite-backed
// implementation for cached domain objects and an encrypting wrapper for the
// bearer token. Implementations are selected by dependency injection at
// construction time.
package storage

import "context"

// Logical keys, one per cached entity kind.
const (
	KeyAuthToken     = "auth_token"
	KeyCurrentUser   = "current_user"
	KeyCachedRecords = "cached_records"
	KeyCachedFriends = "cached_friends"
)

// Store persists values under logical string keys. Get returns
// common.ErrNotFound when the key is absent. Access is synchronous and may
// block briefly; implementations do not add locking of their own.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
