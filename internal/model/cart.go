package model

import "time"

// CartItem mirrors the `cart_items` table. Each row is one
// (product, size) line in a user's cart. PriceCents is captured when
// the item is added so a later catalog price edit cannot change what
// the buyer saw; checkout totals are computed from this snapshot.
type CartItem struct {
	ID         uint64    // cart_items.id
	UserID     uint64    // cart_items.user_id
	ProductID  uint64    // cart_items.product_id
	Size       string    // cart_items.size
	Quantity   uint32    // cart_items.quantity (>= 1)
	PriceCents uint32    // cart_items.price_cents, unit price at add time
	Title      string    // denormalized product title for display
	ImageURL   string    // denormalized product image for display
	CreatedAt  time.Time // cart_items.created_at
}
