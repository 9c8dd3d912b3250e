package notify

import (
	"context"

	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"go.uber.org/zap"
)

// Log writes every event to a zap logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, event string, item domain.CartItem) {
	l.logger.Info("cart item event",
		zap.String("event", event),
		zap.Stringer("cart_id", item.CartID),
		zap.Stringer("item_id", item.ID),
		zap.String("product_id", item.ProductID),
		zap.Stringer("qty", item.Quantity))
}
