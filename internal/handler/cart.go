package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/repository"
)

// CartHandler manages the authenticated user's cart lines. The unit
// price stored on a line is snapshotted from the catalog when the line
// is first added; checkout charges that snapshot, not the live price.
type CartHandler struct {
	Carts    *repository.CartRepo
	Products *repository.ProductRepo
}

func NewCartHandler(carts *repository.CartRepo, products *repository.ProductRepo) *CartHandler {
	return &CartHandler{Carts: carts, Products: products}
}

type addCartReq struct {
	ProductID uint64 `json:"product_id"`
	Size      string `json:"size"`
	Quantity  uint32 `json:"quantity"`
}
type updateCartReq struct {
	Quantity uint32 `json:"quantity"`
}

// List returns the cart lines with a computed total.
func (h *CartHandler) List(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Carts.ItemsByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
	}
	var total uint32
	for _, it := range items {
		total += it.PriceCents * it.Quantity
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total_cents": total})
}

// Add puts (product, size, quantity) into the cart, snapshotting the
// current catalog price. Adding an existing line bumps its quantity.
func (h *CartHandler) Add(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req addCartReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Size = strings.TrimSpace(req.Size)
	if req.ProductID == 0 || req.Size == "" || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id, size and quantity required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, sizes, err := h.Products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
	}
	known := false
	for _, s := range sizes {
		if s.Size == req.Size {
			known = true
			break
		}
	}
	if !known {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown size for this product"})
	}

	if err := h.Carts.Add(ctx, uid, req.ProductID, req.Size, req.Quantity, p.PriceCents); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add to cart failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Update replaces the quantity of one cart line.
func (h *CartHandler) Update(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req updateCartReq
	if err := c.Bind(&req); err != nil || req.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Carts.SetQuantity(ctx, uid, itemID, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove deletes one cart line.
func (h *CartHandler) Remove(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Carts.Remove(ctx, uid, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove from cart failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
