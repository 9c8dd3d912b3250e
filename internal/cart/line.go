package cart

import (
	"context"
	"fmt"

	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// saveItem inserts a new item row and assigns the id the store returned.
func (c *Cart) saveItem(ctx context.Context, item *domain.CartItem) error {
	rec, err := item.Record()
	if err != nil {
		return fmt.Errorf("item.Record: %w", err)
	}

	id, err := c.store.InsertItem(ctx, rec)
	if err != nil {
		return fmt.Errorf("store.InsertItem: %w", err)
	}
	item.ID = id

	return nil
}

// setQuantity persists the quantity alone. Unit prices do not depend on it,
// so nothing is derived again. It reports whether the store applied the write.
func (c *Cart) setQuantity(ctx context.Context, item *domain.CartItem, qty decimal.Decimal) (bool, error) {
	if !qty.IsPositive() {
		return false, &domain.ValidationError{Field: "qty", Reason: "must be positive"}
	}

	updated, err := c.store.UpdateItemQuantity(ctx, item.ID, qty)
	if err != nil {
		return false, fmt.Errorf("store.UpdateItemQuantity: %w", err)
	}
	if !updated {
		c.logger.Warn("cart item quantity not updated", zap.Stringer("item_id", item.ID))
		return false, nil
	}

	item.Quantity = qty

	return true, nil
}

// updateFromPatch persists the merged attributes and swaps them in only when
// the store confirms the write.
func (c *Cart) updateFromPatch(ctx context.Context, item *domain.CartItem, patch domain.ItemPatch) (bool, error) {
	next, err := item.Apply(patch)
	if err != nil {
		return false, err
	}

	rec, err := next.Record()
	if err != nil {
		return false, fmt.Errorf("item.Record: %w", err)
	}

	updated, err := c.store.UpdateItem(ctx, item.ID, rec)
	if err != nil {
		return false, fmt.Errorf("store.UpdateItem: %w", err)
	}
	if !updated {
		c.logger.Warn("cart item not updated", zap.Stringer("item_id", item.ID))
		return false, nil
	}

	*item = next

	return true, nil
}

func (c *Cart) deleteItem(ctx context.Context, item *domain.CartItem) (bool, error) {
	deleted, err := c.store.DeleteItem(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("store.DeleteItem: %w", err)
	}

	return deleted, nil
}
