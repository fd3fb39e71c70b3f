package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/service"
)

// VerifyHandler serves the public "scan to verify" lookup. It is
// reachable without authentication, so everything it returns has been
// redacted by the verification service.
type VerifyHandler struct {
	Verifier *service.VerificationService
}

func NewVerifyHandler(v *service.VerificationService) *VerifyHandler {
	return &VerifyHandler{Verifier: v}
}

// Resolve maps a verification token to the redacted order view. An
// unknown token is a plain 404 with no further detail, so the endpoint
// cannot be used to probe which tokens exist.
func (h *VerifyHandler) Resolve(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	view, err := h.Verifier.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	return c.JSON(http.StatusOK, view)
}
