package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every database round trip started from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUserID extracts the authenticated user's id that JWTAuth
// stored in the context. JWT numeric claims decode as float64; some
// clients produce string subjects, so both are handled.
func currentUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), v > 0
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, n > 0
		}
	case uint64:
		return v, v > 0
	case int64:
		if v > 0 {
			return uint64(v), true
		}
	}
	return 0, false
}
