package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/handler"
	"github.com/iliyamo/shoe-store-api/internal/middleware"
	"github.com/iliyamo/shoe-store-api/internal/model"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// Every route requires a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, products *handler.ProductHandler, orders *handler.AdminOrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/products", products.Create)
	g.PUT("/orders/:id/status", orders.UpdateStatus)
	g.POST("/orders/:id/cancel", orders.Cancel)
}
