// Package services contains the server-side business logic of the
// identity core: the account directory, the role consensus engine, and
// the session authenticator. Services hold no role state between calls;
// every decision re-reads the store inside the operation's transaction.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/cryptox"
	"github.com/patchmemory/kindmesh/internal/dbx"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/models"
	"github.com/patchmemory/kindmesh/internal/server/repositories/repomanager"
)

const maxHandleLength = 64

// DirectoryService owns account creation, uniqueness, and lookups.
// Role changes after creation belong to ConsensusService.
type DirectoryService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	verifier *cryptox.Verifier
	policy   cryptox.Policy
}

// NewDirectoryService constructs a DirectoryService from repositories and
// server config.
func NewDirectoryService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *DirectoryService {
	return &DirectoryService{
		db:       db,
		repos:    m,
		verifier: cryptox.NewVerifier(cfg.BcryptCost),
		policy: cryptox.Policy{
			MinLength:         cfg.MinPasswordLength,
			RequireComplexity: cfg.RequirePasswordComplexity,
		},
	}
}

func validateHandle(handle string) error {
	if handle == "" || strings.TrimSpace(handle) != handle {
		return fmt.Errorf("%w: handle must be non-empty without surrounding spaces", common.ErrValidation)
	}
	if len(handle) > maxHandleLength {
		return fmt.Errorf("%w: handle exceeds %d characters", common.ErrValidation, maxHandleLength)
	}
	return nil
}

// CreateAccount creates a new account on behalf of creatorHandle.
//
// The creator must hold the seed or admin role. The new account defaults
// to member; the single exception is the bootstrap promotion: when the
// creator is the seed account and no admin exists yet, the new account
// becomes the first admin and a promotion edge seed→account is recorded
// next to the creation edge. Both the admin-count check and the writes
// happen inside one serializable transaction, so two concurrent creates
// right after bootstrap cannot both win the promotion.
func (s *DirectoryService) CreateAccount(ctx context.Context, creatorHandle, handle, rawPassword string) (*models.Account, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(rawPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCredential, err)
	}

	// bcrypt is deliberately slow; do it before entering the transaction.
	passwordHash, err := s.verifier.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repos.Accounts(tx)
		edgeRepo := s.repos.Edges(tx)

		creator, err := accountRepo.GetByHandle(ctx, creatorHandle)
		if err != nil {
			return err
		}
		if creator.Role != models.RoleSeed && creator.Role != models.RoleAdmin {
			return common.ErrForbidden
		}

		role := models.RoleMember
		bootstrap := false
		if creator.Role == models.RoleSeed {
			adminCount, err := accountRepo.CountByRole(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			if adminCount == 0 {
				role = models.RoleAdmin
				bootstrap = true
			}
		}

		account, err = accountRepo.Create(ctx, &models.Account{
			Handle:       handle,
			PasswordHash: passwordHash,
			Role:         role,
		})
		if err != nil {
			return err
		}

		if _, err := edgeRepo.Create(ctx, &models.Edge{
			Kind:     models.EdgeCreated,
			SourceID: creator.ID,
			TargetID: account.ID,
		}); err != nil {
			return err
		}

		if bootstrap {
			if _, err := edgeRepo.Create(ctx, &models.Edge{
				Kind:     models.EdgePromoted,
				SourceID: creator.ID,
				TargetID: account.ID,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return nil, common.ErrContention
		}
		return nil, err
	}

	return account, nil
}

// EnsureSeed provisions the single seed account out-of-band. It is
// idempotent: if the seed already exists under the same handle it is
// returned untouched; a seed under a different handle is ErrInvalidState.
func (s *DirectoryService) EnsureSeed(ctx context.Context, handle, rawPassword string) (*models.Account, error) {
	if err := validateHandle(handle); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(rawPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCredential, err)
	}

	passwordHash, err := s.verifier.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var account *models.Account
	err = dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		accountRepo := s.repos.Accounts(tx)

		seedRole := models.RoleSeed
		existing, err := accountRepo.List(ctx, &seedRole)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if existing[0].Handle != handle {
				return fmt.Errorf("%w: seed account already provisioned as %q", common.ErrInvalidState, existing[0].Handle)
			}
			account = &existing[0]
			return nil
		}

		account, err = accountRepo.Create(ctx, &models.Account{
			Handle:       handle,
			PasswordHash: passwordHash,
			Role:         models.RoleSeed,
		})
		return err
	})
	if err != nil {
		if dbx.IsSerializationFailure(err) {
			return nil, common.ErrContention
		}
		return nil, err
	}

	return account, nil
}

// Lookup returns the account with the given handle or common.ErrNotFound.
func (s *DirectoryService) Lookup(ctx context.Context, handle string) (*models.Account, error) {
	return s.repos.Accounts(s.db).GetByHandle(ctx, handle)
}

// ListAccounts returns all accounts in creation order, optionally
// filtered by role. Each call materializes a fresh result.
func (s *DirectoryService) ListAccounts(ctx context.Context, role *models.Role) ([]models.Account, error) {
	return s.repos.Accounts(s.db).List(ctx, role)
}

// CountByRole counts the accounts currently holding exactly role.
func (s *DirectoryService) CountByRole(ctx context.Context, role models.Role) (int, error) {
	return s.repos.Accounts(s.db).CountByRole(ctx, role)
}
