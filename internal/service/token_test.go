package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

func newTestTokenService(users *fakeUserStore) (*TokenService, *fakeTokenStore) {
	store := newFakeTokenStore()
	return NewTokenService(store, users, "test-secret", 15, 30), store
}

func seedUser(t *testing.T, users *fakeUserStore) model.User {
	t.Helper()
	id, err := users.Create(context.Background(), "buyer@example.com", "x", model.RoleCustomer)
	require.NoError(t, err)
	u, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestTokenServiceIssueAndRotate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	u := seedUser(t, users)
	svc, store := newTestTokenService(users)

	pair, err := svc.Issue(ctx, u.ID, u.Role)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access.Token)
	require.NotEmpty(t, pair.Refresh.Raw)

	rotated, userID, err := svc.Rotate(ctx, pair.Refresh.Raw)
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)
	require.NotEqual(t, pair.Refresh.Raw, rotated.Refresh.Raw)

	// The child row must point back at the presented token.
	child, err := store.GetByHash(ctx, utils.HashRefreshRaw(rotated.Refresh.Raw))
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	parent, err := store.GetByHash(ctx, utils.HashRefreshRaw(pair.Refresh.Raw))
	require.NoError(t, err)
	require.Equal(t, parent.ID, *child.ParentID)
	require.NotNil(t, parent.RevokedAt)
}

func TestTokenServiceRotateUnknown(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users)
	svc, _ := newTestTokenService(users)

	_, _, err := svc.Rotate(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceReuseRevokesChain(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	u := seedUser(t, users)
	svc, store := newTestTokenService(users)

	pair, err := svc.Issue(ctx, u.ID, u.Role)
	require.NoError(t, err)

	// Legitimate rotation, then two more hops down the chain.
	second, _, err := svc.Rotate(ctx, pair.Refresh.Raw)
	require.NoError(t, err)
	third, _, err := svc.Rotate(ctx, second.Refresh.Raw)
	require.NoError(t, err)

	// Replaying the original (already revoked) token is reuse: the whole
	// chain dies, including the still-active third token.
	_, _, err = svc.Rotate(ctx, pair.Refresh.Raw)
	require.ErrorIs(t, err, ErrTokenReused)
	require.Zero(t, store.activeCount(u.ID))

	_, _, err = svc.Rotate(ctx, third.Refresh.Raw)
	require.ErrorIs(t, err, ErrTokenReused)
}

func TestTokenServiceConcurrentRotationOneWinner(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	u := seedUser(t, users)
	svc, _ := newTestTokenService(users)

	pair, err := svc.Issue(ctx, u.ID, u.Role)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Rotate(ctx, pair.Refresh.Raw)
		}(i)
	}
	wg.Wait()

	wins, reuses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, ErrTokenReused)
			reuses++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, reuses)
}

func TestTokenServiceRotateExpired(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	u := seedUser(t, users)
	svc, store := newTestTokenService(users)

	raw, err := utils.RandomHex(48)
	require.NoError(t, err)
	_, err = store.Insert(ctx, u.ID, utils.HashRefreshRaw(raw), nil, time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	_, _, err = svc.Rotate(ctx, raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenServiceRevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	u := seedUser(t, users)
	svc, store := newTestTokenService(users)

	pair, err := svc.Issue(ctx, u.ID, u.Role)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.Refresh.Raw))
	require.Zero(t, store.activeCount(u.ID))
	// Again, and with a token that never existed.
	require.NoError(t, svc.Revoke(ctx, pair.Refresh.Raw))
	require.NoError(t, svc.Revoke(ctx, "never-issued"))

	// A revoked token cannot be rotated; by then it reads as reuse.
	_, _, err = svc.Rotate(ctx, pair.Refresh.Raw)
	require.ErrorIs(t, err, ErrTokenReused)
}
