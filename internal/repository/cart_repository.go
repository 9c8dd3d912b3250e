package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/port"
	"github.com/shopspring/decimal"
)

// Tables names the cart and cart item tables.
type Tables struct {
	Carts string
	Items string
}

func DefaultTables() Tables {
	return Tables{
		Carts: "carts",
		Items: "cart_items",
	}
}

type statements struct {
	findCart        string
	insertCart      string
	deleteCart      string
	deleteCartItems string

	findItemsByCart    string
	findItem           string
	insertItem         string
	updateItem         string
	updateItemQuantity string
	deleteItem         string
}

const itemColumns = `id, cart_id, product_id, COALESCE(product_title, ''), price, COALESCE(tax, 0), qty,
	COALESCE(seller_id, ''), COALESCE(options, '{}'), COALESCE(option_price, 0), created_at, updated_at`

func newStatements(tables Tables) statements {
	carts := pgx.Identifier{tables.Carts}.Sanitize()
	items := pgx.Identifier{tables.Items}.Sanitize()

	return statements{
		findCart: `SELECT id, COALESCE(identifier, ''), COALESCE(instance, ''), created_at, updated_at
			FROM ` + carts + ` WHERE identifier = $1 AND instance = $2`,
		insertCart:      `INSERT INTO ` + carts + ` (identifier, instance) VALUES ($1, $2) RETURNING id`,
		deleteCart:      `DELETE FROM ` + carts + ` WHERE id = $1`,
		deleteCartItems: `DELETE FROM ` + items + ` WHERE cart_id = $1`,

		findItemsByCart: `SELECT ` + itemColumns + ` FROM ` + items + ` WHERE cart_id = $1 ORDER BY created_at, id`,
		findItem:        `SELECT ` + itemColumns + ` FROM ` + items + ` WHERE id = $1`,
		insertItem: `INSERT INTO ` + items + `
			(cart_id, product_id, product_title, price, tax, qty, seller_id, options, option_price)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9) RETURNING id`,
		updateItem: `UPDATE ` + items + ` SET
			product_id = $2, product_title = $3, price = $4, tax = $5, qty = $6,
			seller_id = NULLIF($7, ''), options = $8, option_price = $9, updated_at = now()
			WHERE id = $1`,
		updateItemQuantity: `UPDATE ` + items + ` SET qty = $2, updated_at = now() WHERE id = $1`,
		deleteItem:         `DELETE FROM ` + items + ` WHERE id = $1`,
	}
}

type cartStore struct {
	q    querier
	pool *pgxpool.Pool
	sql  statements
}

func NewCartStore(pool *pgxpool.Pool, tables Tables) port.CartStore {
	return &cartStore{
		q:    pool,
		pool: pool,
		sql:  newStatements(tables),
	}
}

func NewCartStoreWithTx(tx pgx.Tx, tables Tables) port.CartStore {
	return &cartStore{
		q:    tx,
		pool: nil, // use provided transaction instead
		sql:  newStatements(tables),
	}
}

func (s *cartStore) FindCart(ctx context.Context, identifier, instance string) (domain.CartRecord, error) {
	if identifier == "" {
		return domain.CartRecord{}, fmt.Errorf("identifier is empty")
	}

	var rec domain.CartRecord
	err := s.q.QueryRow(ctx, s.sql.findCart, identifier, instance).
		Scan(&rec.ID, &rec.Identifier, &rec.Instance, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartRecord{}, fmt.Errorf("cart[%s/%s]: %w", identifier, instance, port.ErrNotFound)
	}
	if err != nil {
		return domain.CartRecord{}, fmt.Errorf("q.FindCart: %w", err)
	}

	return rec, nil
}

func (s *cartStore) InsertCart(ctx context.Context, identifier, instance string) (uuid.UUID, error) {
	if identifier == "" {
		return uuid.Nil, fmt.Errorf("identifier is empty")
	}

	var id uuid.UUID
	if err := s.q.QueryRow(ctx, s.sql.insertCart, identifier, instance).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("q.InsertCart: %w", err)
	}

	return id, nil
}

// DeleteCart removes the cart row together with any item rows still pointing at it.
func (s *cartStore) DeleteCart(ctx context.Context, id uuid.UUID) error {
	_, err := withTx(ctx, s.pool, s.q, func(q querier) (struct{}, error) {
		if _, err := q.Exec(ctx, s.sql.deleteCartItems, id); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCartItems: %w", err)
		}

		if _, err := q.Exec(ctx, s.sql.deleteCart, id); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCart: %w", err)
		}

		return struct{}{}, nil
	})

	return err
}

func (s *cartStore) FindItemsByCart(ctx context.Context, cartID uuid.UUID) ([]domain.ItemRecord, error) {
	rows, err := s.q.Query(ctx, s.sql.findItemsByCart, cartID)
	if err != nil {
		return nil, fmt.Errorf("q.FindItemsByCart: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ItemRecord, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return items, nil
}

func (s *cartStore) FindItem(ctx context.Context, id uuid.UUID) (domain.ItemRecord, error) {
	item, err := scanItem(s.q.QueryRow(ctx, s.sql.findItem, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ItemRecord{}, fmt.Errorf("item[%s]: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return domain.ItemRecord{}, fmt.Errorf("q.FindItem: %w", err)
	}

	return item, nil
}

func (s *cartStore) InsertItem(ctx context.Context, item domain.ItemRecord) (uuid.UUID, error) {
	if item.CartID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("cartID is empty")
	}

	var id uuid.UUID
	err := s.q.QueryRow(ctx, s.sql.insertItem,
		item.CartID,
		item.ProductID,
		item.ProductTitle,
		item.Price,
		item.Tax,
		item.Quantity,
		item.SellerID,
		item.Options,
		item.OptionPrice,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("q.InsertItem: %w", err)
	}

	return id, nil
}

func (s *cartStore) UpdateItem(ctx context.Context, id uuid.UUID, item domain.ItemRecord) (bool, error) {
	tag, err := s.q.Exec(ctx, s.sql.updateItem,
		id,
		item.ProductID,
		item.ProductTitle,
		item.Price,
		item.Tax,
		item.Quantity,
		item.SellerID,
		item.Options,
		item.OptionPrice,
	)
	if err != nil {
		return false, fmt.Errorf("q.UpdateItem: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *cartStore) UpdateItemQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error) {
	tag, err := s.q.Exec(ctx, s.sql.updateItemQuantity, id, qty)
	if err != nil {
		return false, fmt.Errorf("q.UpdateItemQuantity: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *cartStore) DeleteItem(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.q.Exec(ctx, s.sql.deleteItem, id)
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanItem(row pgx.Row) (domain.ItemRecord, error) {
	var item domain.ItemRecord

	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.ProductTitle,
		&item.Price,
		&item.Tax,
		&item.Quantity,
		&item.SellerID,
		&item.Options,
		&item.OptionPrice,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	return item, err
}
