package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaBatchTimeout bounds how long a partial batch waits before it is flushed.
const kafkaBatchTimeout = 10 * time.Millisecond

// Kafka publishes events keyed by cart id, so events of one cart stay ordered.
// Writes are asynchronous: Notify never waits for the broker, failures are logged.
type Kafka struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

func NewKafka(brokers []string, topic string, logger *zap.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           kafkaBatchTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("kafka publish failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}

	return &Kafka{
		writer: w,
		logger: logger,
		now:    time.Now,
	}
}

func (k *Kafka) Notify(ctx context.Context, event string, item domain.CartItem) {
	payload, err := json.Marshal(NewEvent(event, item, k.now()))
	if err != nil {
		k.logger.Error("marshal cart event failed", zap.String("event", event), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(item.CartID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.logger.Warn("kafka publish failed", zap.String("event", event), zap.Error(err))
	}
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
