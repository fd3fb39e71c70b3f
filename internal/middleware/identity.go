package middleware

// identity.go holds small helpers shared by the rate limiter and cache
// middleware for identifying the requester.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// requesterID returns a string form of the authenticated user id set
// by JWTAuth, or "anon" for guests. The sub claim arrives as a JSON
// number (float64); fmt handles whichever type it decoded to.
func requesterID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v == "" {
			return "anon"
		}
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
