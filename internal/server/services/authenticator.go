package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/cryptox"
	"github.com/patchmemory/kindmesh/internal/server/config"
	"github.com/patchmemory/kindmesh/internal/server/models"
	"github.com/patchmemory/kindmesh/internal/server/repositories/repomanager"
)

// AuthenticatorService validates login attempts and yields the
// authenticated account, including its current role, to the transport
// layer.
type AuthenticatorService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	verifier *cryptox.Verifier
}

// NewAuthenticatorService constructs an AuthenticatorService.
func NewAuthenticatorService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthenticatorService {
	return &AuthenticatorService{
		db:       db,
		repos:    m,
		verifier: cryptox.NewVerifier(cfg.BcryptCost),
	}
}

// Authenticate verifies handle/rawPassword and returns the account on
// success. Unknown handle and wrong password both come back as
// ErrAuthenticationFailed; the unknown-handle path still pays for one
// bcrypt comparison against a dummy hash so response timing does not
// reveal whether the handle exists.
func (s *AuthenticatorService) Authenticate(ctx context.Context, handle, rawPassword string) (*models.Account, error) {
	account, err := s.repos.Accounts(s.db).GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.verifier.Verify(rawPassword, cryptox.DummyHash)
			return nil, common.ErrAuthenticationFailed
		}
		return nil, common.ErrInternal
	}

	if !s.verifier.Verify(rawPassword, account.PasswordHash) {
		return nil, common.ErrAuthenticationFailed
	}

	return account, nil
}
