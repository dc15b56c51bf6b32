// Package accounts persists account nodes: creation, lookups, role
// counts, and role updates. Role decisions belong to the services layer;
// this package only reads and writes rows.
package accounts

import (
	"context"

	"github.com/patchmemory/kindmesh/internal/server/models"
)

type Repository interface {
	// Create inserts a new account. The store's uniqueness constraint on
	// the handle is the single authority on duplicates; a collision is
	// returned as common.ErrDuplicateHandle.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByHandle returns the account or common.ErrNotFound.
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)

	// List returns all accounts in creation order, optionally filtered
	// by role. The result is materialized per call.
	List(ctx context.Context, role *models.Role) ([]models.Account, error)

	// CountByRole counts accounts currently holding exactly role.
	CountByRole(ctx context.Context, role models.Role) (int, error)

	// UpdateRole sets the role of the account with the given id and
	// returns common.ErrNotFound when no such account exists.
	UpdateRole(ctx context.Context, id string, role models.Role) error
}
