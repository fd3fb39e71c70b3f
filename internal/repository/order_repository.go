package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/shoe-store-api/internal/model"
)

// OrderRepo persists orders and their immutable line-item snapshots.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts the order row and all item rows in one transaction
// and populates the generated ID and timestamps on the passed order.
// The item snapshot written here is never updated afterwards.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status, total_cents, verify_token,
                             ship_name, ship_street, ship_city, ship_zip, ship_phone)
         VALUES (?,?,?,?,?,?,?,?,?)`,
		o.UserID, o.Status, o.TotalCents, o.VerifyToken,
		o.ShipName, o.ShipStreet, o.ShipCity, o.ShipZip, o.ShipPhone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) > 0 {
		query := `INSERT INTO order_items (order_id, product_id, title, brand, category, size, quantity, price_cents, image_url) VALUES `
		args := make([]interface{}, 0, len(o.Items)*9)
		for i, it := range o.Items {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?,?,?,?,?,?)"
			args = append(args, o.ID, it.ProductID, it.Title, it.Brand, it.Category,
				it.Size, it.Quantity, it.PriceCents, it.ImageURL)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	// Read timestamps back so the returned order matches the stored row.
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) scanOrder(row *sql.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.VerifyToken,
		&o.ShipName, &o.ShipStreet, &o.ShipCity, &o.ShipZip, &o.ShipPhone,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNotFound
	}
	return o, err
}

func (r *OrderRepo) loadItems(ctx context.Context, o *model.Order) error {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, order_id, product_id, title, brand, category, size, quantity, price_cents, image_url
         FROM order_items WHERE order_id=? ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Brand,
			&it.Category, &it.Size, &it.Quantity, &it.PriceCents, &it.ImageURL); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

const orderCols = `id, user_id, status, total_cents, verify_token,
                   ship_name, ship_street, ship_city, ship_zip, ship_phone,
                   created_at, updated_at`

// GetByID loads one order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	o, err := r.scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? LIMIT 1", id))
	if err != nil {
		return model.Order{}, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// GetByVerifyToken resolves the public verification token to its order.
// An unknown token is ErrNotFound; callers must not reveal more.
func (r *OrderRepo) GetByVerifyToken(ctx context.Context, token string) (model.Order, error) {
	o, err := r.scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE verify_token=? LIMIT 1", token))
	if err != nil {
		return model.Order{}, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first, items included.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE user_id=? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.VerifyToken,
			&o.ShipName, &o.ShipStreet, &o.ShipCity, &o.ShipZip, &o.ShipPhone,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another with a
// conditional UPDATE. Zero affected rows means another request changed
// the status first; the caller re-reads and re-validates.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=? AND status=?", to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
