package model

import "time"

// Product represents a row in the `products` table. Prices are stored
// as integer cents to avoid floating point drift.
type Product struct {
	ID         uint64    // products.id
	Title      string    // products.title
	Brand      string    // products.brand
	Category   string    // products.category
	PriceCents uint32    // products.price_cents
	ImageURL   string    // products.image_url
	CreatedAt  time.Time // products.created_at
	UpdatedAt  time.Time // products.updated_at
}

// SizeStock is one entry of a product's size run, mirroring the
// `product_sizes` table. Stock is only ever mutated through the
// inventory repository's conditional decrement and unconditional
// restore, which is what keeps it from going negative under
// concurrent checkouts.
type SizeStock struct {
	ProductID uint64 // product_sizes.product_id
	Size      string // product_sizes.size (label, e.g. "42" or "9.5")
	Stock     uint32 // product_sizes.stock
}
