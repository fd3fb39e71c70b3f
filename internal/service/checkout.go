package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/shoe-store-api/internal/model"
	"github.com/iliyamo/shoe-store-api/internal/queue"
	"github.com/iliyamo/shoe-store-api/internal/utils"
)

// Inventory is the per-(product,size) stock ledger surface.
// *repository.ProductRepo implements both methods with single-statement
// conditional updates, which is what makes them safe under concurrency.
type Inventory interface {
	ReserveStock(ctx context.Context, productID uint64, size string, qty uint32) error
	RestoreStock(ctx context.Context, productID uint64, size string, qty uint32) error
}

// CartStore is the slice of the cart repository checkout needs.
type CartStore interface {
	ItemsByUser(ctx context.Context, userID uint64) ([]model.CartItem, error)
	Clear(ctx context.Context, userID uint64) error
}

// OrderStore is the order persistence surface.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	GetByVerifyToken(ctx context.Context, token string) (model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.OrderStatus) error
}

// Catalog supplies product metadata for the order's line-item snapshot.
type Catalog interface {
	GetByID(ctx context.Context, id uint64) (model.Product, []model.SizeStock, error)
}

// EventPublisher pushes domain events to the broker. May be nil when
// no broker is configured; publishing is always best effort.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// ShippingAddress is the destination captured on the order.
type ShippingAddress struct {
	Name   string `json:"name"`
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
	Phone  string `json:"phone"`
}

// CheckoutService converts carts into orders. No lock is held across a
// whole checkout: each line's reservation is its own atomic step, and
// a failure part-way is repaired by compensating restores, so one slow
// checkout never blocks another.
type CheckoutService struct {
	Carts   CartStore
	Orders  OrderStore
	Stock   Inventory
	Catalog Catalog
	Events  EventPublisher
}

func NewCheckoutService(carts CartStore, orders OrderStore, stock Inventory, catalog Catalog, events EventPublisher) *CheckoutService {
	return &CheckoutService{Carts: carts, Orders: orders, Stock: stock, Catalog: catalog, Events: events}
}

// PlaceOrder turns the user's cart into a PENDING order:
//
//  1. empty cart is rejected outright;
//  2. every line is reserved against the inventory ledger — the first
//     failure rolls back the lines already taken and aborts with a
//     StockError naming the offender, so checkout is all-or-nothing;
//  3. the total is computed from the cart's price snapshot, not live
//     catalog prices;
//  4. the order is persisted with a fresh random verification token;
//  5. the cart is cleared;
//  6. an order.placed event goes to the broker, best effort.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uint64, addr ShippingAddress) (model.Order, error) {
	items, err := s.Carts.ItemsByUser(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	reserved := make([]model.CartItem, 0, len(items))
	rollback := func() {
		// Compensating restores run on a fresh context so a caller
		// timeout cannot leave stock half-returned.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, it := range reserved {
			if err := s.Stock.RestoreStock(rctx, it.ProductID, it.Size, it.Quantity); err != nil {
				log.Printf("checkout: restore %d/%s x%d failed: %v", it.ProductID, it.Size, it.Quantity, err)
			}
		}
	}

	for _, it := range items {
		if err := s.Stock.ReserveStock(ctx, it.ProductID, it.Size, it.Quantity); err != nil {
			rollback()
			return model.Order{}, &StockError{ProductID: it.ProductID, Size: it.Size, Err: err}
		}
		reserved = append(reserved, it)
	}

	token, err := utils.NewVerifyToken()
	if err != nil {
		rollback()
		return model.Order{}, err
	}

	order := model.Order{
		UserID:      userID,
		Status:      model.OrderPending,
		VerifyToken: token,
		ShipName:    addr.Name,
		ShipStreet:  addr.Street,
		ShipCity:    addr.City,
		ShipZip:     addr.Zip,
		ShipPhone:   addr.Phone,
	}
	var total uint32
	for _, it := range items {
		line := model.OrderItem{
			ProductID:  it.ProductID,
			Title:      it.Title,
			Size:       it.Size,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
			ImageURL:   it.ImageURL,
		}
		// Brand/category are not carried on cart lines; snapshot them
		// from the catalog so the verification view can show them even
		// after the product changes.
		if p, _, err := s.Catalog.GetByID(ctx, it.ProductID); err == nil {
			line.Brand = p.Brand
			line.Category = p.Category
		}
		total += it.PriceCents * it.Quantity
		order.Items = append(order.Items, line)
	}
	order.TotalCents = total

	if err := s.Orders.Create(ctx, &order); err != nil {
		rollback()
		return model.Order{}, err
	}

	// The order exists from here on; a cart that fails to clear is an
	// annoyance, not a correctness problem, so log and move on.
	if err := s.Carts.Clear(ctx, userID); err != nil {
		log.Printf("checkout: clear cart for user %d failed: %v", userID, err)
	}

	s.publishPlaced(ctx, order)
	return order, nil
}

func (s *CheckoutService) publishPlaced(ctx context.Context, o model.Order) {
	if s.Events == nil {
		return
	}
	ev := queue.OrderPlacedEvent{
		EventID:    uuid.NewString(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		PlacedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, queue.OrderPlacedItem{Title: it.Title, Size: it.Size, Quantity: it.Quantity})
	}
	if err := s.Events.PublishOrderPlaced(ctx, ev); err != nil {
		log.Printf("checkout: publish order.placed for order %d failed: %v", o.ID, err)
	}
}

// CancelOrder moves an order to CANCELLED and returns every line's
// units to stock. Only PENDING and PROCESSING orders can be cancelled;
// the conditional status update makes a concurrent cancel/ship race
// resolve to exactly one winner.
func (s *CheckoutService) CancelOrder(ctx context.Context, orderID uint64) (model.Order, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if !model.Cancellable(o.Status) {
		return model.Order{}, ErrInvalidStatusTransition
	}
	if err := s.Orders.UpdateStatus(ctx, o.ID, o.Status, model.OrderCancelled); err != nil {
		return model.Order{}, ErrInvalidStatusTransition
	}
	for _, it := range o.Items {
		if err := s.Stock.RestoreStock(ctx, it.ProductID, it.Size, it.Quantity); err != nil {
			log.Printf("cancel: restore %d/%s x%d failed: %v", it.ProductID, it.Size, it.Quantity, err)
		}
	}
	o.Status = model.OrderCancelled
	return o, nil
}

// UpdateStatus applies an admin status change. Forward skips are
// allowed; DELIVERED and CANCELLED are terminal; moving to CANCELLED
// routes through CancelOrder so stock comes back.
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderID uint64, to model.OrderStatus) (model.Order, error) {
	if !model.ValidStatus(to) {
		return model.Order{}, ErrInvalidStatusTransition
	}
	if to == model.OrderCancelled {
		return s.CancelOrder(ctx, orderID)
	}
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if !model.CanTransition(o.Status, to) {
		return model.Order{}, ErrInvalidStatusTransition
	}
	if err := s.Orders.UpdateStatus(ctx, o.ID, o.Status, to); err != nil {
		return model.Order{}, ErrInvalidStatusTransition
	}
	o.Status = to
	return o, nil
}
