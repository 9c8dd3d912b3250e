package port

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by a CartStore when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

type CartStore interface {
	FindCart(ctx context.Context, identifier, instance string) (domain.CartRecord, error)
	InsertCart(ctx context.Context, identifier, instance string) (uuid.UUID, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error

	FindItemsByCart(ctx context.Context, cartID uuid.UUID) ([]domain.ItemRecord, error)
	FindItem(ctx context.Context, id uuid.UUID) (domain.ItemRecord, error)
	InsertItem(ctx context.Context, item domain.ItemRecord) (uuid.UUID, error)
	// UpdateItem and UpdateItemQuantity report false when no row was changed.
	UpdateItem(ctx context.Context, id uuid.UUID, item domain.ItemRecord) (bool, error)
	UpdateItemQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (bool, error)
}
