package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/repository"
	"github.com/iliyamo/shoe-store-api/internal/service"
)

// stubOrderStore serves a single order keyed by its verification token.
type stubOrderStore struct {
	order model.Order
}

func (s *stubOrderStore) Create(context.Context, *model.Order) error { return nil }

func (s *stubOrderStore) GetByID(_ context.Context, id uint64) (model.Order, error) {
	if id == s.order.ID {
		return s.order, nil
	}
	return model.Order{}, repository.ErrNotFound
}

func (s *stubOrderStore) GetByVerifyToken(_ context.Context, token string) (model.Order, error) {
	if token == s.order.VerifyToken {
		return s.order, nil
	}
	return model.Order{}, repository.ErrNotFound
}

func (s *stubOrderStore) ListByUser(context.Context, uint64) ([]model.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) UpdateStatus(context.Context, uint64, model.OrderStatus, model.OrderStatus) error {
	return nil
}

func verifyRequest(t *testing.T, h *VerifyHandler, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/orders/verify/:token")
	c.SetParamNames("token")
	c.SetParamValues(token)
	require.NoError(t, h.Resolve(c))
	return rec
}

func TestVerifyResolveRedactsOrder(t *testing.T) {
	store := &stubOrderStore{order: model.Order{
		ID:          11,
		UserID:      7,
		Status:      model.OrderShipped,
		TotalCents:  12900,
		VerifyToken: "tok-abc",
		ShipName:    "A. Buyer",
		ShipStreet:  "1 Main St",
		ShipCity:    "Springfield",
		Items: []model.OrderItem{
			{Title: "Trail Runner", Brand: "Acme", Category: "running", Size: "42", Quantity: 1, PriceCents: 12900},
		},
	}}
	h := NewVerifyHandler(service.NewVerificationService(store))

	rec := verifyRequest(t, h, "tok-abc")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 11, body["order_id"])
	require.Equal(t, "SHIPPED", body["status"])
	require.EqualValues(t, 12900, body["total_cents"])

	// Nothing that identifies the buyer may appear in the payload.
	raw := rec.Body.String()
	require.NotContains(t, raw, "user_id")
	require.NotContains(t, raw, "A. Buyer")
	require.NotContains(t, raw, "1 Main St")
	require.NotContains(t, raw, "Springfield")
	require.NotContains(t, raw, "tok-abc")
}

func TestVerifyResolveUnknownToken(t *testing.T) {
	h := NewVerifyHandler(service.NewVerificationService(&stubOrderStore{}))
	rec := verifyRequest(t, h, "no-such-token")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
