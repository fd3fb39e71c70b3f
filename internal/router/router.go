package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated read endpoints: product
// pages and the order verification lookup. cacheMW is the Redis
// response cache (pass-through when Redis is unavailable); these are
// the only routes it wraps, because everything else is personalized.
func RegisterPublic(e *echo.Echo, products *handler.ProductHandler, verify *handler.VerifyHandler, cacheMW echo.MiddlewareFunc) {
	e.GET("/v1/products/:id", products.Get, cacheMW)
	// The verification view is public by design: whoever holds the
	// printed token may resolve it. The payload is already redacted.
	e.GET("/v1/orders/verify/:token", verify.Resolve, cacheMW)
}
