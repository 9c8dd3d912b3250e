// Package notify delivers cart item events to logs, Redis and Kafka.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/port"
)

// Event is the payload published for a cart item change.
type Event struct {
	Name       string    `json:"event"`
	CartID     uuid.UUID `json:"cartId"`
	ItemID     uuid.UUID `json:"itemId"`
	ProductID  string    `json:"productId"`
	Quantity   string    `json:"qty"`
	SellerID   string    `json:"sellerId,omitempty"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(name string, item domain.CartItem, at time.Time) Event {
	return Event{
		Name:       name,
		CartID:     item.CartID,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		Quantity:   item.Quantity.String(),
		SellerID:   item.SellerID,
		Total:      item.Total().String(),
		OccurredAt: at.UTC(),
	}
}

// Fanout hands every event to each notifier in order.
type Fanout []port.Notifier

func (f Fanout) Notify(ctx context.Context, event string, item domain.CartItem) {
	for _, n := range f {
		n.Notify(ctx, event, item)
	}
}
