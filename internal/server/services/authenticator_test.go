package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patchmemory/kindmesh/internal/common"
	"github.com/patchmemory/kindmesh/internal/server/models"
)

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedAndFirstAdmin(t, ctx, "alice")

	t.Run("valid credentials return the account with its current role", func(t *testing.T) {
		account, err := env.auth.Authenticate(ctx, "alice", "first-admin-pass")
		require.NoError(t, err)
		require.Equal(t, "alice", account.Handle)
		require.Equal(t, models.RoleAdmin, account.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Authenticate(ctx, "alice", "not-the-password")
		require.ErrorIs(t, err, common.ErrAuthenticationFailed)
	})

	t.Run("unknown handle fails the same way as a wrong password", func(t *testing.T) {
		_, err := env.auth.Authenticate(ctx, "ghost", "first-admin-pass")
		require.ErrorIs(t, err, common.ErrAuthenticationFailed)
	})

	t.Run("the seed account can authenticate", func(t *testing.T) {
		account, err := env.auth.Authenticate(ctx, "hello", "seed-password")
		require.NoError(t, err)
		require.Equal(t, models.RoleSeed, account.Role)
	})
}
