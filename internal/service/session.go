package service

import (
	"context"
	"errors"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

// UserStore is the persistence surface the session and 2FA services
// need. *repository.UserRepo implements it against MySQL.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	SetTwoFactor(ctx context.Context, id uint64, state model.TwoFactorState, secret string) error
	SetTOTPLastStep(ctx context.Context, id uint64, step uint64) error
}

// Profile is the public-safe slice of a user record returned from
// auth endpoints. The password hash and the TOTP secret never leave
// the service layer.
type Profile struct {
	ID               uint64 `json:"id"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	IsVerified       bool   `json:"is_verified"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

func profileOf(u model.User) Profile {
	return Profile{
		ID:               u.ID,
		Email:            u.Email,
		Role:             u.Role,
		IsVerified:       u.IsVerified,
		TwoFactorEnabled: u.TwoFactor == model.TwoFactorEnabled,
	}
}

// LoginResult is either a completed login (tokens + profile) or the
// TwoFactorRequired branch: the password checked out but the user has
// 2FA enabled and no code was supplied, so no tokens were issued and
// the caller should re-submit with a code.
type LoginResult struct {
	TwoFactorRequired bool
	User              Profile
	Tokens            TokenPair
}

// SessionService orchestrates login: password check, then the 2FA
// gate, then token issuance.
type SessionService struct {
	Users      UserStore
	Tokens     *TokenService
	TwoFactor  *TwoFactorService
	BcryptCost int
}

func NewSessionService(users UserStore, tokens *TokenService, twoFactor *TwoFactorService, bcryptCost int) *SessionService {
	return &SessionService{Users: users, Tokens: tokens, TwoFactor: twoFactor, BcryptCost: bcryptCost}
}

// Register creates a customer account and logs it in immediately.
func (s *SessionService) Register(ctx context.Context, email, password string) (LoginResult, error) {
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return LoginResult{}, err
	}
	id, err := s.Users.Create(ctx, email, hash, model.RoleCustomer)
	if err != nil {
		return LoginResult{}, err
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return LoginResult{}, err
	}
	pair, err := s.Tokens.Issue(ctx, u.ID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: profileOf(u), Tokens: pair}, nil
}

// Login verifies credentials and, when required, a TOTP code. Unknown
// email and wrong password both come back as ErrInvalidCredentials,
// and the unknown-email path still runs a bcrypt comparison so the
// two cases do not diverge in timing.
func (s *SessionService) Login(ctx context.Context, email, password, totpCode string) (LoginResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.TwoFactor == model.TwoFactorEnabled {
		if totpCode == "" {
			// Not an error: password was right, the caller just needs
			// to come back with a code. No tokens yet.
			return LoginResult{TwoFactorRequired: true}, nil
		}
		if err := s.TwoFactor.CheckCode(ctx, u, totpCode); err != nil {
			return LoginResult{}, err
		}
	}

	pair, err := s.Tokens.Issue(ctx, u.ID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: profileOf(u), Tokens: pair}, nil
}

// Logout revokes the rotation chain behind the presented refresh
// token. Calling it with an unknown or already-revoked token is a
// no-op, never an error.
func (s *SessionService) Logout(ctx context.Context, rawRefresh string) error {
	return s.Tokens.Revoke(ctx, rawRefresh)
}

// ChangePassword verifies the current password, stores a new hash and
// revokes every outstanding refresh token so stolen sessions die with
// the old password.
func (s *SessionService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(next, s.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.Tokens.RevokeAllForUser(ctx, userID)
}
