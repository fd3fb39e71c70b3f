package model

import "time"

// TwoFactorState describes where a user is in the TOTP enrollment
// lifecycle. The state machine only moves along these edges:
//
//	Disabled -> Pending  (setup requested, secret generated)
//	Pending  -> Enabled  (first code verified)
//	Pending  -> Disabled (enrollment abandoned)
//	Enabled  -> Disabled (explicit disable)
//
// A secret is present exactly when the state is not Disabled.
type TwoFactorState string

const (
	TwoFactorDisabled TwoFactorState = "DISABLED"
	TwoFactorPending  TwoFactorState = "PENDING"
	TwoFactorEnabled  TwoFactorState = "ENABLED"
)

// Roles stored in users.role and carried in the access token's "role" claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents a row in the `users` table.
//
// Fields:
//
//	ID            – primary key identifier.
//	Email         – unique email address, stored lowercase.
//	PasswordHash  – bcrypt hashed password.
//	Role          – CUSTOMER or ADMIN.
//	IsVerified    – whether the account passed email verification.
//	TwoFactor     – TOTP enrollment state (users.two_factor_state).
//	TwoFactorKey  – base32 TOTP secret; empty when TwoFactor is Disabled.
//	TOTPLastStep  – last accepted TOTP time step, used to reject a code
//	                that is replayed inside its validity window.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsVerified   bool
	TwoFactor    TwoFactorState
	TwoFactorKey string
	TOTPLastStep uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the raw token is stored. Tokens form rotation chains:
// every refresh revokes the presented token and inserts a child whose
// ParentID points at it, so reuse detection can walk and revoke the
// whole chain without loading it into memory.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the raw token value.
//	ParentID  – id of the token this one was rotated from (nil for a
//	            chain root created at login).
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (nil if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ParentID  *uint64
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the token can still be presented for rotation
// at the given instant.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
