package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

func TestVerificationResolve(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrderStore()
	svc := NewVerificationService(orders)

	o := model.Order{
		UserID:      7,
		Status:      model.OrderPending,
		TotalCents:  35700,
		VerifyToken: "tok-abc",
		ShipName:    "A. Buyer",
		ShipStreet:  "1 Main St",
		Items: []model.OrderItem{
			{ProductID: 1, Title: "Trail Runner", Brand: "Acme", Category: "running", Size: "42", Quantity: 2, PriceCents: 12900},
		},
	}
	require.NoError(t, orders.Create(ctx, &o))

	view, err := svc.Resolve(ctx, "tok-abc")
	require.NoError(t, err)
	require.Equal(t, o.ID, view.OrderID)
	require.Equal(t, "PENDING", view.Status)
	require.Equal(t, uint32(35700), view.TotalCents)
	require.Len(t, view.Items, 1)
	require.Equal(t, "Trail Runner", view.Items[0].Title)
	require.Equal(t, "42", view.Items[0].Size)
}

func TestVerificationUnknownToken(t *testing.T) {
	svc := NewVerificationService(newFakeOrderStore())
	_, err := svc.Resolve(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
