package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/service"
)

// AdminOrderHandler exposes the back-office order operations: status
// updates and cancellation. The router guards these with the ADMIN role.
type AdminOrderHandler struct {
	Checkout *service.CheckoutService
}

func NewAdminOrderHandler(checkout *service.CheckoutService) *AdminOrderHandler {
	return &AdminOrderHandler{Checkout: checkout}
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along its lifecycle. Forward skips are
// allowed; DELIVERED and CANCELLED are terminal. Setting CANCELLED
// behaves exactly like Cancel, stock restore included.
func (h *AdminOrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	to := model.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Checkout.UpdateStatus(ctx, id, to)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status transition"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, order)
}

// Cancel voids a PENDING/PROCESSING order and returns its units to
// stock.
func (h *AdminOrderHandler) Cancel(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Checkout.CancelOrder(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, service.ErrInvalidStatusTransition):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "order can no longer be cancelled"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, order)
}
