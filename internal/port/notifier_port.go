package port

import (
	"context"

	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
)

const (
	EventItemUpdated = "cart.updated"
	EventItemRemoved = "cart.removed"
)

// Notifier receives cart item events. Delivery is fire-and-forget: there is
// no acknowledgement and nothing is retried.
type Notifier interface {
	Notify(ctx context.Context, event string, item domain.CartItem)
}
