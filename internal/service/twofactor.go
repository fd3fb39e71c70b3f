package service

import (
	"context"
	"time"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

// TwoFactorService drives the TOTP enrollment state machine
// (DISABLED -> PENDING -> ENABLED -> DISABLED) and validates codes at
// login. Validation carries a replay guard: each user's last accepted
// time step is persisted and a code only counts if its step is newer,
// so a captured code cannot be submitted twice even inside the
// tolerance window.
type TwoFactorService struct {
	Users  UserStore
	Issuer string
}

func NewTwoFactorService(users UserStore, issuer string) *TwoFactorService {
	return &TwoFactorService{Users: users, Issuer: issuer}
}

// Setup begins enrollment. Only valid from DISABLED. It generates a
// fresh secret, parks the user in PENDING and returns the secret plus
// the otpauth:// URI for the authenticator app. Login is not protected
// until the first code is verified.
func (s *TwoFactorService) Setup(ctx context.Context, userID uint64) (secret, uri string, err error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if u.TwoFactor != model.TwoFactorDisabled {
		return "", "", ErrTwoFactorState
	}
	secret, err = utils.NewTOTPSecret()
	if err != nil {
		return "", "", err
	}
	if err := s.Users.SetTwoFactor(ctx, userID, model.TwoFactorPending, secret); err != nil {
		return "", "", err
	}
	return secret, utils.TOTPURI(s.Issuer, u.Email, secret), nil
}

// VerifyAndEnable confirms enrollment with one valid code. Only valid
// from PENDING; a wrong code leaves the user in PENDING.
func (s *TwoFactorService) VerifyAndEnable(ctx context.Context, userID uint64, code string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.TwoFactor != model.TwoFactorPending {
		return ErrTwoFactorState
	}
	step, ok := utils.ValidateTOTP(u.TwoFactorKey, code, time.Now().UTC())
	if !ok {
		return ErrInvalidTwoFactorCode
	}
	if err := s.Users.SetTwoFactor(ctx, userID, model.TwoFactorEnabled, u.TwoFactorKey); err != nil {
		return err
	}
	// Burn the confirming code so it cannot also pass the next login.
	return s.Users.SetTOTPLastStep(ctx, userID, step)
}

// Disable clears the secret from PENDING or ENABLED. No code is
// required: trust is anchored to the already-authenticated session.
func (s *TwoFactorService) Disable(ctx context.Context, userID uint64) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.TwoFactor == model.TwoFactorDisabled {
		return ErrTwoFactorState
	}
	return s.Users.SetTwoFactor(ctx, userID, model.TwoFactorDisabled, "")
}

// CheckCode validates a login-time TOTP code for a user with 2FA
// enabled, enforcing the replay guard and advancing it on success.
func (s *TwoFactorService) CheckCode(ctx context.Context, u model.User, code string) error {
	step, ok := utils.ValidateTOTP(u.TwoFactorKey, code, time.Now().UTC())
	if !ok || step <= u.TOTPLastStep {
		return ErrInvalidTwoFactorCode
	}
	return s.Users.SetTOTPLastStep(ctx, u.ID, step)
}
