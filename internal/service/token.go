package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

// TokenStore is the persistence surface the token ledger needs.
// *repository.TokenRepo implements it against MySQL.
type TokenStore interface {
	Insert(ctx context.Context, userID uint64, tokenHash string, parentID *uint64, exp time.Time) (uint64, error)
	GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	Claim(ctx context.Context, id uint64) (bool, error)
	RevokeChain(ctx context.Context, id uint64) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// UserGetter is the slice of the user store the ledger needs to stamp
// the role claim into rotated access tokens.
type UserGetter interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenPair is what clients receive: a short-lived signed access token
// and the raw long-lived refresh token.
type TokenPair struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// TokenService is the refresh-token ledger. Access tokens it issues
// are stateless JWTs; refresh tokens are stateful rows forming
// rotation chains with single-use semantics and reuse detection.
type TokenService struct {
	Store          TokenStore
	Users          UserGetter
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
}

func NewTokenService(store TokenStore, users UserGetter, secret string, accessTTLMin, refreshTTLDays int) *TokenService {
	return &TokenService{
		Store:          store,
		Users:          users,
		JWTSecret:      secret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
	}
}

// Issue creates a fresh rotation chain root for the user and returns
// the pair. Called at login and registration.
func (s *TokenService) Issue(ctx context.Context, userID uint64, role string) (TokenPair, error) {
	return s.issue(ctx, userID, role, nil)
}

func (s *TokenService) issue(ctx context.Context, userID uint64, role string, parentID *uint64) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.JWTSecret, userID, role, s.AccessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.RefreshTTLDays)
	if err != nil {
		return TokenPair{}, err
	}
	if _, err := s.Store.Insert(ctx, userID, utils.HashRefreshRaw(refresh.Raw), parentID, refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Rotate exchanges a refresh token for a new pair. The presented token
// is revoked in the same step that authorizes the exchange:
//
//   - unknown hash            -> ErrInvalidToken
//   - already revoked         -> reuse: revoke the whole chain, ErrTokenReused
//   - expired                 -> ErrExpiredToken
//   - lost the claim race     -> treated as reuse (a concurrent rotation
//     already consumed it), chain revoked, ErrTokenReused
//
// Exactly one of two concurrent rotations of the same token can win
// the conditional claim, so a parent can never end up with two valid
// children.
func (s *TokenService) Rotate(ctx context.Context, rawRefresh string) (TokenPair, uint64, error) {
	t, err := s.Store.GetByHash(ctx, utils.HashRefreshRaw(rawRefresh))
	if errors.Is(err, repository.ErrNotFound) {
		return TokenPair{}, 0, ErrInvalidToken
	}
	if err != nil {
		return TokenPair{}, 0, err
	}
	if t.RevokedAt != nil {
		// A stolen-and-replayed token: kill every descendant the thief
		// (or the legitimate client) may still be holding.
		if err := s.Store.RevokeChain(ctx, t.ID); err != nil {
			return TokenPair{}, 0, err
		}
		return TokenPair{}, 0, ErrTokenReused
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return TokenPair{}, 0, ErrExpiredToken
	}

	won, err := s.Store.Claim(ctx, t.ID)
	if err != nil {
		return TokenPair{}, 0, err
	}
	if !won {
		if err := s.Store.RevokeChain(ctx, t.ID); err != nil {
			return TokenPair{}, 0, err
		}
		return TokenPair{}, 0, ErrTokenReused
	}

	u, err := s.Users.GetByID(ctx, t.UserID)
	if err != nil {
		return TokenPair{}, 0, err
	}
	parent := t.ID
	pair, err := s.issue(ctx, t.UserID, u.Role, &parent)
	if err != nil {
		return TokenPair{}, 0, err
	}
	return pair, t.UserID, nil
}

// Revoke ends the session that the given refresh token belongs to by
// revoking its entire rotation chain. Unknown and already-revoked
// tokens are a no-op, which makes logout idempotent.
func (s *TokenService) Revoke(ctx context.Context, rawRefresh string) error {
	t, err := s.Store.GetByHash(ctx, utils.HashRefreshRaw(rawRefresh))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Store.RevokeChain(ctx, t.ID)
}

// RevokeAllForUser revokes every active token the user holds, across
// all chains. Used on password change.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return s.Store.RevokeAllForUser(ctx, userID)
}
