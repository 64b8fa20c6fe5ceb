package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskforge/internal/dbx"
	"github.com/dmitrijs2005/taskforge/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a pool or a transaction and
// owns the schema.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
