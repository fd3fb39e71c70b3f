package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

// UserRepo persists user records including their 2FA columns. Password
// hashing happens in the service layer; this repo only stores what it
// is given.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,password_hash,role,is_verified,two_factor_state,two_factor_secret,totp_last_step,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified,
		&u.TwoFactor, &u.TwoFactorKey, &u.TOTPLastStep, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user with 2FA disabled and returns its ID. The
// email is normalized to lowercase; a duplicate maps to ErrEmailExists
// (MySQL error 1062 on the unique index).
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, two_factor_state) VALUES (?,?,?,?)",
		email, passwordHash, role, model.TwoFactorDisabled)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", passwordHash, id)
	return err
}

// SetTwoFactor writes the enrollment state and secret together so the
// "secret present iff state != DISABLED" invariant cannot be broken by
// a partial update. The replay guard resets with each (re)enrollment.
func (r *UserRepo) SetTwoFactor(ctx context.Context, id uint64, state model.TwoFactorState, secret string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET two_factor_state=?, two_factor_secret=?, totp_last_step=0 WHERE id=?",
		state, secret, id)
	return err
}

// SetTOTPLastStep records the most recently accepted TOTP time step.
// The WHERE guard keeps the value monotonic even if two logins race.
func (r *UserRepo) SetTOTPLastStep(ctx context.Context, id uint64, step uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET totp_last_step=? WHERE id=? AND totp_last_step<?",
		step, id, step)
	return err
}
