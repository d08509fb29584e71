// Package services implements the client-side application layer: session
// handling, cached records and friends, and asset transfer. Services talk to
// the server through the api facade and persist state in the local store.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebalakin/costmate/internal/client/storage"
	"github.com/ebalakin/costmate/internal/common"
	"github.com/ebalakin/costmate/internal/cryptox"
)

const storeSaltKey = "store_salt"
const storeSaltBytes = 16

// Stores bundles the two views of the local database: Plain for cached
// domain objects and Secure for the session token.
type Stores struct {
	DB     *sql.DB
	Plain  storage.Store
	Secure storage.Store
}

// OpenStores opens the local database, bootstraps the per-install salt on
// first run, and derives the store key from secret. The salt lives in the kv
// table unencrypted; only the values sealed with the derived key depend on
// the secret.
func OpenStores(ctx context.Context, dsn, secret string) (*Stores, error) {
	db, err := storage.InitDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}

	plain := storage.NewSQLiteStore(db)

	salt, err := plain.Get(ctx, storeSaltKey)
	if errors.Is(err, common.ErrNotFound) {
		salt = common.GenerateRandByteArray(storeSaltBytes)
		err = plain.Save(ctx, storeSaltKey, salt)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	key := cryptox.DeriveStoreKey([]byte(secret), salt)
	return &Stores{
		DB:     db,
		Plain:  plain,
		Secure: storage.NewSecureStore(plain, key),
	}, nil
}

// Close releases the underlying database handle.
func (s *Stores) Close() error {
	return s.DB.Close()
}
