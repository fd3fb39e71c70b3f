package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

// TokenRepo persists refresh tokens. Rows hold only the SHA-256 hash
// of the raw token plus a parent_id link forming the rotation chain.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Insert stores a refresh token row and returns its id. parentID is
// nil for a chain root created at login.
func (r *TokenRepo) Insert(ctx context.Context, userID uint64, tokenHash string, parentID *uint64, exp time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, parent_id, expires_at) VALUES (?,?,?,?)",
		userID, tokenHash, parentID, exp)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByHash loads a token row regardless of its revocation or expiry
// state; the service layer decides what an inactive row means (expired
// vs. reuse of a revoked token).
func (r *TokenRepo) GetByHash(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t         model.RefreshToken
		parentID  sql.NullInt64
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, parent_id, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &parentID, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RefreshToken{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, err
	}
	if parentID.Valid {
		p := uint64(parentID.Int64)
		t.ParentID = &p
	}
	if revokedAt.Valid {
		rv := revokedAt.Time
		t.RevokedAt = &rv
	}
	return t, nil
}

// Claim atomically revokes a still-active token and reports whether
// this call was the one that revoked it. Two concurrent rotations of
// the same token therefore produce exactly one winner; the loser sees
// claimed=false and must treat the token as reused.
func (r *TokenRepo) Claim(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeChain revokes every token in the rotation chain containing the
// given token id. It walks parent links up to the root, then follows
// child links back down, so the chain is never loaded into memory as a
// whole. Chains are linear (one child per token), which keeps both
// walks to a handful of single-row queries.
func (r *TokenRepo) RevokeChain(ctx context.Context, id uint64) error {
	// Walk up to the chain root.
	root := id
	for {
		var parent sql.NullInt64
		err := r.DB.QueryRowContext(ctx,
			"SELECT parent_id FROM refresh_tokens WHERE id=?", root).Scan(&parent)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return err
		}
		if !parent.Valid {
			break
		}
		root = uint64(parent.Int64)
	}
	// Walk down from the root, revoking as we go.
	cur := root
	for {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE id=? AND revoked_at IS NULL", cur); err != nil {
			return err
		}
		var child uint64
		err := r.DB.QueryRowContext(ctx,
			"SELECT id FROM refresh_tokens WHERE parent_id=? LIMIT 1", cur).Scan(&child)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		cur = child
	}
}

// RevokeAllForUser revokes all of a user's active tokens. Used on
// password change so stolen refresh tokens die with the old password.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// PurgeExpired garbage-collects rows whose expiry passed more than the
// given grace period ago. Intended to run from a periodic job.
func (r *TokenRepo) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ?", time.Now().UTC().Add(-grace))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
