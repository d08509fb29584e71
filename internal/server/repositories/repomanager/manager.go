package repomanager

import (
	"context"
	"database/sql"

	"github.com/ebalakin/costmate/internal/dbx"
	"github.com/ebalakin/costmate/internal/server/repositories/attachments"
	"github.com/ebalakin/costmate/internal/server/repositories/friendships"
	"github.com/ebalakin/costmate/internal/server/repositories/records"
	"github.com/ebalakin/costmate/internal/server/repositories/tokens"
	"github.com/ebalakin/costmate/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so the
// same repository code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Records(db dbx.DBTX) records.Repository
	Friendships(db dbx.DBTX) friendships.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
