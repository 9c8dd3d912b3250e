package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis publishes events as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
	now     func() time.Time
}

func NewRedis(client *redis.Client, channel string, logger *zap.Logger) *Redis {
	return &Redis{
		client:  client,
		channel: channel,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *Redis) Notify(ctx context.Context, event string, item domain.CartItem) {
	payload, err := json.Marshal(NewEvent(event, item, r.now()))
	if err != nil {
		r.logger.Error("marshal cart event failed", zap.String("event", event), zap.Error(err))
		return
	}

	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("redis publish failed",
			zap.String("channel", r.channel),
			zap.String("event", event),
			zap.Error(err))
	}
}
