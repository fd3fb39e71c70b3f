package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
)

// ProductHandler serves the minimal catalog surface the store needs:
// admins create products with their size run, anyone can fetch one.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

type sizeReq struct {
	Size  string `json:"size"`
	Stock uint32 `json:"stock"`
}
type createProductReq struct {
	Title      string    `json:"title"`
	Brand      string    `json:"brand"`
	Category   string    `json:"category"`
	PriceCents uint32    `json:"price_cents"`
	ImageURL   string    `json:"image_url"`
	Sizes      []sizeReq `json:"sizes"`
}

// Create inserts a product and its sizes. Admin only (enforced by the
// router's role middleware).
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and price_cents required"})
	}
	seen := make(map[string]bool, len(req.Sizes))
	sizes := make([]model.SizeStock, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		label := strings.TrimSpace(s.Size)
		if label == "" || seen[label] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sizes must be non-empty and unique"})
		}
		seen[label] = true
		sizes = append(sizes, model.SizeStock{Size: label, Stock: s.Stock})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := model.Product{
		Title:      req.Title,
		Brand:      strings.TrimSpace(req.Brand),
		Category:   strings.TrimSpace(req.Category),
		PriceCents: req.PriceCents,
		ImageURL:   strings.TrimSpace(req.ImageURL),
	}
	if err := h.Products.Create(ctx, &p, sizes); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID})
}

// Get returns a product with its per-size stock. Public; sits behind
// the response cache.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, sizes, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
	}

	type sizeOut struct {
		Size  string `json:"size"`
		Stock uint32 `json:"stock"`
	}
	out := make([]sizeOut, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, sizeOut{Size: s.Size, Stock: s.Stock})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":          p.ID,
		"title":       p.Title,
		"brand":       p.Brand,
		"category":    p.Category,
		"price_cents": p.PriceCents,
		"image_url":   p.ImageURL,
		"sizes":       out,
	})
}
