package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/shoe-store-api/internal/repository"
)

// VerifiedItem is one order line as shown to an anonymous verifier.
type VerifiedItem struct {
	Title      string `json:"title"`
	Brand      string `json:"brand"`
	Category   string `json:"category"`
	Size       string `json:"size"`
	Quantity   uint32 `json:"quantity"`
	PriceCents uint32 `json:"price_cents"`
}

// VerifiedOrder is the redacted order view behind the public
// "scan to verify" lookup. Anyone holding the printed token can fetch
// it, so it carries no user identifier and no shipping address.
type VerifiedOrder struct {
	OrderID    uint64         `json:"order_id"`
	PlacedAt   time.Time      `json:"placed_at"`
	Status     string         `json:"status"`
	TotalCents uint32         `json:"total_cents"`
	Items      []VerifiedItem `json:"items"`
}

// VerificationService resolves opaque verification tokens to redacted
// order views.
type VerificationService struct {
	Orders OrderStore
}

func NewVerificationService(orders OrderStore) *VerificationService {
	return &VerificationService{Orders: orders}
}

// Resolve looks up an order by its verification token. An unknown
// token yields ErrOrderNotFound with nothing else attached, so probing
// cannot distinguish "revoked", "mistyped" and "never existed".
func (s *VerificationService) Resolve(ctx context.Context, token string) (VerifiedOrder, error) {
	o, err := s.Orders.GetByVerifyToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return VerifiedOrder{}, ErrOrderNotFound
	}
	if err != nil {
		return VerifiedOrder{}, err
	}
	view := VerifiedOrder{
		OrderID:    o.ID,
		PlacedAt:   o.CreatedAt,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
	}
	for _, it := range o.Items {
		view.Items = append(view.Items, VerifiedItem{
			Title:      it.Title,
			Brand:      it.Brand,
			Category:   it.Category,
			Size:       it.Size,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return view, nil
}
