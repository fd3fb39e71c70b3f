package model

import "time"

// OrderStatus enumerates the lifecycle of a placed order. Transitions
// only move forward (skipping steps is allowed, e.g. PENDING straight
// to SHIPPED); DELIVERED is terminal, and CANCELLED is terminal and
// reachable only from PENDING or PROCESSING.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// statusRank orders the forward states so transition checks reduce to
// an integer comparison. CANCELLED sits outside the rank order and is
// handled explicitly.
var statusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := statusRank[s]
	return ok || s == OrderCancelled
}

// CanTransition reports whether an order may move from one status to
// another via an admin update.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if from == OrderCancelled || from == OrderDelivered {
		return false
	}
	if to == OrderCancelled {
		return from == OrderPending || from == OrderProcessing
	}
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	return ok1 && ok2 && tr > fr
}

// Cancellable reports whether stock for the order's lines should be
// restorable, i.e. the order has not shipped yet.
func Cancellable(s OrderStatus) bool {
	return s == OrderPending || s == OrderProcessing
}

// OrderItem is one immutable line of an order, snapshotted from the
// cart at placement time. Mirrors the `order_items` table.
type OrderItem struct {
	ID         uint64 // order_items.id
	OrderID    uint64 // order_items.order_id
	ProductID  uint64 // order_items.product_id
	Title      string // order_items.title (snapshot)
	Brand      string // order_items.brand (snapshot)
	Category   string // order_items.category (snapshot)
	Size       string // order_items.size
	Quantity   uint32 // order_items.quantity
	PriceCents uint32 // order_items.price_cents, unit price snapshot
	ImageURL   string // order_items.image_url (snapshot)
}

// Order mirrors the `orders` table. The line-item snapshot, address
// and verification token never change after creation; only Status is
// mutated later, by admin action.
//
// VerifyToken is the opaque, crypto-random handle behind the public
// "scan to verify" lookup. Anyone holding it can resolve a redacted
// summary of the order, so nothing here beyond the token itself may
// appear in that view.
type Order struct {
	ID          uint64      // orders.id
	UserID      uint64      // orders.user_id
	Status      OrderStatus // orders.status
	TotalCents  uint32      // orders.total_cents
	VerifyToken string      // orders.verify_token (unique)
	ShipName    string      // orders.ship_name
	ShipStreet  string      // orders.ship_street
	ShipCity    string      // orders.ship_city
	ShipZip     string      // orders.ship_zip
	ShipPhone   string      // orders.ship_phone
	Items       []OrderItem // order_items rows
	CreatedAt   time.Time   // orders.created_at
	UpdatedAt   time.Time   // orders.updated_at
}
