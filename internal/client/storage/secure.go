package storage

import (
	"context"

	"github.com/ebalakin/costmate/internal/cryptox"
)

// SecureStore wraps another Store and seals values with AES-GCM before they
// reach the backing store. The token lives behind this wrapper; plain cached
// objects use the inner store directly.
type SecureStore struct {
	inner Store
	key   []byte
}

// NewSecureStore wraps inner with encryption under key (a 32-byte AES key,
// typically from cryptox.DeriveStoreKey).
func NewSecureStore(inner Store, key []byte) *SecureStore {
	return &SecureStore{inner: inner, key: key}
}

func (s *SecureStore) Save(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key)
	if err != nil {
		return err
	}
	return s.inner.Save(ctx, key, sealed)
}

func (s *SecureStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return cryptox.Open(sealed, s.key)
}

func (s *SecureStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
