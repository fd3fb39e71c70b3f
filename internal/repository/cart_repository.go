package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

// CartRepo persists per-user cart lines. A cart line is unique per
// (user, product, size); adding the same pair again raises the
// quantity but keeps the unit price captured on first add.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// ItemsByUser returns the user's cart lines joined with the product
// catalog for display fields. Ordering by insertion keeps output stable.
func (r *CartRepo) ItemsByUser(ctx context.Context, userID uint64) ([]model.CartItem, error) {
	const q = `SELECT ci.id, ci.user_id, ci.product_id, ci.size, ci.quantity, ci.price_cents,
                      p.title, p.image_url, ci.created_at
               FROM cart_items ci
               JOIN products p ON p.id = ci.product_id
               WHERE ci.user_id = ?
               ORDER BY ci.id`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Size, &it.Quantity,
			&it.PriceCents, &it.Title, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Add inserts a cart line or, when the (user, product, size) line
// already exists, bumps its quantity. price_cents is deliberately not
// part of the update: the snapshot taken at first add is what checkout
// will charge.
func (r *CartRepo) Add(ctx context.Context, userID, productID uint64, size string, qty, priceCents uint32) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, size, quantity, price_cents)
         VALUES (?,?,?,?,?)
         ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		userID, productID, size, qty, priceCents)
	return err
}

// SetQuantity replaces the quantity of one cart line owned by the user.
func (r *CartRepo) SetQuantity(ctx context.Context, userID, itemID uint64, qty uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET quantity=? WHERE id=? AND user_id=?", qty, itemID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such line" from "quantity unchanged".
		var one int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM cart_items WHERE id=? AND user_id=? LIMIT 1", itemID, userID).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Remove deletes one cart line owned by the user.
func (r *CartRepo) Remove(ctx context.Context, userID, itemID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id=? AND user_id=?", itemID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear drops every line in the user's cart. Called after an order is
// persisted; clearing twice is harmless.
func (r *CartRepo) Clear(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id=?", userID)
	return err
}
