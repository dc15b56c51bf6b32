// Package repomanager vends repository implementations bound to a DBTX,
// so services can use the same repositories inside and outside a
// transaction, and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/patchmemory/kindmesh/internal/dbx"
	"github.com/patchmemory/kindmesh/internal/server/repositories/accounts"
	"github.com/patchmemory/kindmesh/internal/server/repositories/edges"
	"github.com/patchmemory/kindmesh/internal/server/repositories/votes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Edges(db dbx.DBTX) edges.Repository
	Votes(db dbx.DBTX) votes.Repository
}
