package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions *service.SessionService
	Tokens   *service.TokenService
}

func NewAuthHandler(sessions *service.SessionService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    service.Profile `json:"user"`
	Access  tokenPart       `json:"access"`
	Refresh tokenPart       `json:"refresh"`
}

func pairResp(user service.Profile, pair service.TokenPair) authResp {
	return authResp{
		User:    user,
		Access:  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		Refresh: tokenPart{Token: pair.Refresh.Raw, Expires: pair.Refresh.Exp}, // raw back to client
	}
}

// Register creates a customer account and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Sessions.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, pairResp(res.User, res.Tokens))
}

// Login verifies credentials (and the TOTP code when 2FA is enabled)
// and returns a new token pair. When 2FA is enabled and no code was
// sent, the response is 200 with two_factor_required and no tokens.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Sessions.Login(ctx, req.Email, req.Password, strings.TrimSpace(req.TOTPCode))
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid two-factor code"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if res.TwoFactorRequired {
		return c.JSON(http.StatusOK, echo.Map{"two_factor_required": true})
	}
	return c.JSON(http.StatusOK, pairResp(res.User, res.Tokens))
}

// Refresh rotates the presented refresh token: the old one is revoked
// in the same step and a fresh pair comes back. Presenting a token
// that was already rotated revokes its whole chain.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, userID, err := h.Tokens.Rotate(ctx, strings.TrimSpace(req.RefreshToken))
	switch {
	case errors.Is(err, service.ErrTokenReused):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token reuse detected"})
	case errors.Is(err, service.ErrExpiredToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token expired"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": userID,
		"access":  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		"refresh": tokenPart{Token: pair.Refresh.Raw, Expires: pair.Refresh.Exp},
	})
}

// Logout revokes the rotation chain behind the presented refresh
// token. Idempotent: logging out twice with the same token succeeds
// both times.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sessions.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword swaps the password and kills every open session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must be at least 8 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sessions.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "change password failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Sessions.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":                 u.ID,
		"email":              u.Email,
		"role":               u.Role,
		"is_verified":        u.IsVerified,
		"two_factor_enabled": u.TwoFactor == model.TwoFactorEnabled,
	})
}
