package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

// ProductRepo persists products and their per-size stock counters.
// The stock mutations here are the only writers of product_sizes.stock
// anywhere in the codebase.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// Create inserts a product and its size run in one transaction.
// The generated id is written back onto p.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product, sizes []model.SizeStock) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO products (title, brand, category, price_cents, image_url) VALUES (?,?,?,?,?)",
		p.Title, p.Brand, p.Category, p.PriceCents, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if len(sizes) > 0 {
		query := "INSERT INTO product_sizes (product_id, size, stock) VALUES "
		args := make([]interface{}, 0, len(sizes)*3)
		for i, s := range sizes {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?)"
			args = append(args, p.ID, s.Size, s.Stock)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID loads a product and its size entries ordered by size label.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, []model.SizeStock, error) {
	var p model.Product
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, title, brand, category, price_cents, image_url, created_at, updated_at FROM products WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Title, &p.Brand, &p.Category, &p.PriceCents, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, nil, ErrNotFound
	}
	if err != nil {
		return model.Product{}, nil, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT product_id, size, stock FROM product_sizes WHERE product_id=? ORDER BY size", id)
	if err != nil {
		return model.Product{}, nil, err
	}
	defer rows.Close()
	var sizes []model.SizeStock
	for rows.Next() {
		var s model.SizeStock
		if err := rows.Scan(&s.ProductID, &s.Size, &s.Stock); err != nil {
			return model.Product{}, nil, err
		}
		sizes = append(sizes, s)
	}
	if err := rows.Err(); err != nil {
		return model.Product{}, nil, err
	}
	return p, sizes, nil
}

// ReserveStock decrements stock for one (product, size) pair if and
// only if enough units remain, in a single conditional UPDATE. The
// check and the decrement happen in the same statement so two
// concurrent checkouts can never both take the last unit; MySQL's
// row lock serializes them and exactly one matches the stock>=qty
// predicate. Zero affected rows means either a short stock row or a
// missing one, distinguished by a follow-up existence probe.
func (r *ProductRepo) ReserveStock(ctx context.Context, productID uint64, size string, qty uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock - ? WHERE product_id=? AND size=? AND stock >= ?",
		qty, productID, size, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM product_sizes WHERE product_id=? AND size=? LIMIT 1",
		productID, size).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSizeNotFound
	}
	if err != nil {
		return err
	}
	return ErrInsufficientStock
}

// RestoreStock adds units back unconditionally. Used as the
// compensating action when a later checkout line fails, and on order
// cancellation.
func (r *ProductRepo) RestoreStock(ctx context.Context, productID uint64, size string, qty uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE product_sizes SET stock = stock + ? WHERE product_id=? AND size=?",
		qty, productID, size)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSizeNotFound
	}
	return nil
}
