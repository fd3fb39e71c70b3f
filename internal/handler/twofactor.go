package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/service"
)

// TwoFactorHandler exposes the TOTP enrollment endpoints. All three
// require an authenticated session; enabling 2FA on someone else's
// account is not a thing.
type TwoFactorHandler struct {
	TwoFactor *service.TwoFactorService
}

func NewTwoFactorHandler(tf *service.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{TwoFactor: tf}
}

type totpVerifyReq struct {
	Code string `json:"code"`
}

// Setup starts enrollment: generates a secret, parks the account in
// the pending state and returns the secret plus the otpauth:// URI
// the client renders as a QR code. Login stays unprotected until the
// first code is verified.
func (h *TwoFactorHandler) Setup(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	secret, uri, err := h.TwoFactor.Setup(ctx, uid)
	if err != nil {
		if errors.Is(err, service.ErrTwoFactorState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "two-factor already set up"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "setup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"secret":      secret,
		"otpauth_url": uri,
	})
}

// Verify confirms enrollment with one valid code and flips the
// account to enabled. A wrong code leaves enrollment pending.
func (h *TwoFactorHandler) Verify(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req totpVerifyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.TwoFactor.VerifyAndEnable(ctx, uid, strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, service.ErrTwoFactorState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no pending two-factor setup"})
	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid two-factor code"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"enabled": true})
}

// Disable turns 2FA off and wipes the secret. No code confirmation is
// required; the authenticated session is the trust anchor.
func (h *TwoFactorHandler) Disable(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.TwoFactor.Disable(ctx, uid); err != nil {
		if errors.Is(err, service.ErrTwoFactorState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "two-factor not enabled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "disable failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"enabled": false})
}
