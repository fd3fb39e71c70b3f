package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/handler"
	"github.com/iliyamo/shoe-store-api/internal/middleware"
	"github.com/iliyamo/shoe-store-api/internal/model"
)

// RegisterCustomer registers the shopping endpoints. All routes
// require a valid JWT; admins may use them too (an admin placing a
// test order is routine).
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, orders *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.GET("/cart", cart.List)
	g.POST("/cart/items", cart.Add)
	g.PUT("/cart/items/:id", cart.Update)
	g.DELETE("/cart/items/:id", cart.Remove)

	g.POST("/orders", orders.Place)
	g.GET("/orders", orders.List)
	g.GET("/orders/:id", orders.Get)
}
