package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

func newTestSessionService() (*SessionService, *fakeUserStore, *fakeTokenStore) {
	users := newFakeUserStore()
	tokens, store := newTestTokenService(users)
	tf := NewTwoFactorService(users, "ShoeStore")
	// MinCost keeps the bcrypt work factor out of the test runtime.
	return NewSessionService(users, tokens, tf, bcrypt.MinCost), users, store
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSessionService()

	res, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.False(t, res.TwoFactorRequired)
	require.Equal(t, model.RoleCustomer, res.User.Role)
	require.NotEmpty(t, res.Tokens.Access.Token)
	require.NotEmpty(t, res.Tokens.Refresh.Raw)

	again, err := svc.Login(ctx, "buyer@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, again.User.ID)
	require.False(t, again.User.TwoFactorEnabled)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSessionService()

	_, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "buyer@example.com", "otherpassword")
	require.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestSessionService()

	_, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)

	// Wrong password and unknown email must be indistinguishable.
	_, err = svc.Login(ctx, "buyer@example.com", "wrong-password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ghost@example.com", "hunter2hunter2", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginTwoFactorGate(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestSessionService()

	res, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)

	secret, err := utils.NewTOTPSecret()
	require.NoError(t, err)
	require.NoError(t, users.SetTwoFactor(ctx, res.User.ID, model.TwoFactorEnabled, secret))

	// Correct password, no code: the two-factor branch, no tokens.
	gate, err := svc.Login(ctx, "buyer@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	require.True(t, gate.TwoFactorRequired)
	require.Empty(t, gate.Tokens.Access.Token)

	// Wrong code is rejected before any token is minted.
	_, err = svc.Login(ctx, "buyer@example.com", "hunter2hunter2", "000000")
	require.ErrorIs(t, err, ErrInvalidTwoFactorCode)

	code, err := utils.TOTPCodeAt(secret, utils.TOTPStep(time.Now().UTC()))
	require.NoError(t, err)
	full, err := svc.Login(ctx, "buyer@example.com", "hunter2hunter2", code)
	require.NoError(t, err)
	require.False(t, full.TwoFactorRequired)
	require.NotEmpty(t, full.Tokens.Access.Token)
	require.True(t, full.User.TwoFactorEnabled)

	// The same code cannot open a second session inside its window.
	_, err = svc.Login(ctx, "buyer@example.com", "hunter2hunter2", code)
	require.ErrorIs(t, err, ErrInvalidTwoFactorCode)
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestSessionService()

	res, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Tokens.Refresh.Raw))
	require.Zero(t, store.activeCount(res.User.ID))
	require.NoError(t, svc.Logout(ctx, res.Tokens.Refresh.Raw))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestSessionService()

	res, err := svc.Register(ctx, "buyer@example.com", "hunter2hunter2")
	require.NoError(t, err)
	// A second session on another device.
	_, err = svc.Login(ctx, "buyer@example.com", "hunter2hunter2", "")
	require.NoError(t, err)
	require.Equal(t, 2, store.activeCount(res.User.ID))

	err = svc.ChangePassword(ctx, res.User.ID, "wrong-password", "newpassword123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, res.User.ID, "hunter2hunter2", "newpassword123"))
	require.Zero(t, store.activeCount(res.User.ID))

	_, err = svc.Login(ctx, "buyer@example.com", "hunter2hunter2", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	logged, err := svc.Login(ctx, "buyer@example.com", "newpassword123", "")
	require.NoError(t, err)
	require.NotEmpty(t, logged.Tokens.Access.Token)
}
