// Package service contains the business logic of the store: session
// management, refresh-token rotation, TOTP enrollment, checkout and
// order verification. Services operate over small store interfaces so
// the logic is exercised against in-memory fakes in tests and against
// the MySQL repositories in production.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password; callers must not be able to tell which one happened.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidTwoFactorCode is returned for a wrong, expired or
	// replayed TOTP code.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	// ErrTwoFactorState is returned when an enrollment operation is
	// attempted from the wrong state, e.g. setup while already enabled.
	ErrTwoFactorState = errors.New("invalid two-factor state")

	// ErrInvalidToken is returned for a refresh token that was never
	// issued (or was garbage-collected).
	ErrInvalidToken = errors.New("invalid refresh token")

	// ErrExpiredToken is returned for a known but expired refresh token.
	ErrExpiredToken = errors.New("refresh token expired")

	// ErrTokenReused signals that an already-rotated token was
	// presented again. By the time callers see it, the whole rotation
	// chain has been revoked.
	ErrTokenReused = errors.New("refresh token reuse detected")

	// ErrEmptyCart rejects checkout of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNotFound is returned by verification lookup; an unknown
	// token and a token that never existed are indistinguishable.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatusTransition rejects order status updates that the
	// lifecycle does not allow.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// StockError reports which checkout line could not be reserved. It
// wraps the repository sentinel (insufficient stock or unknown size)
// so errors.Is still works on the cause.
type StockError struct {
	ProductID uint64
	Size      string
	Err       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %d size %s: %v", e.ProductID, e.Size, e.Err)
}

func (e *StockError) Unwrap() error { return e.Err }
