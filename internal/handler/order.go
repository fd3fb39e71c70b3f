package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/service"
)

// OrderHandler serves the customer-facing order endpoints: checkout,
// order history and single-order lookup.
type OrderHandler struct {
	Checkout *service.CheckoutService
	Orders   *repository.OrderRepo
}

func NewOrderHandler(checkout *service.CheckoutService, orders *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Checkout: checkout, Orders: orders}
}

type placeOrderReq struct {
	Shipping service.ShippingAddress `json:"shipping"`
}

// Place converts the user's cart into an order. Checkout is
// all-or-nothing: a single line without stock aborts the whole call
// and restores everything reserved so far, with the offending line
// named in the response.
func (h *OrderHandler) Place(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Shipping.Name == "" || req.Shipping.Street == "" || req.Shipping.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipping name, street and city required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Checkout.PlaceOrder(ctx, uid, req.Shipping)
	if err != nil {
		var se *service.StockError
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		case errors.As(err, &se):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "insufficient stock",
				"product_id": se.ProductID,
				"size":       se.Size,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "place order failed"})
		}
	}
	return c.JSON(http.StatusCreated, order)
}

// List returns the user's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Get returns one of the user's own orders. Ownership is enforced
// here, not in the repository, so admins can reuse the repo method.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	if order.UserID != uid {
		// Same response as a missing order; order ids are guessable,
		// their existence should not be.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}
