package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/handler"
	"github.com/iliyamo/shoe-store-api/internal/middleware"
	"github.com/iliyamo/shoe-store-api/internal/model"
)

// RegisterAuth registers authentication endpoints. Operations that
// establish or exchange credentials live under /v1/auth without JWT
// middleware (they carry their own proof); rateMW throttles them
// because they are the natural target for credential stuffing.
// Account management endpoints under /v1 require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tf *handler.TwoFactorHandler, jwtSecret string, rateMW echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rateMW)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, not a JWT: a client
	// whose access token already expired must still be able to end its
	// session. Revoking an already-revoked token is a 204 as well.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
	auth.GET("/me", a.Me)
	auth.PUT("/auth/password", a.ChangePassword)
	auth.POST("/auth/2fa/setup", tf.Setup)
	auth.POST("/auth/2fa/verify", tf.Verify)
	auth.POST("/auth/2fa/disable", tf.Disable)
}
