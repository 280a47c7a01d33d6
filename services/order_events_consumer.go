package services

import (
	"context"
	"encoding/json"

	"delivery-service/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderEventsConsumer consumes the order-service event stream and feeds
// new orders into the driver broadcast channel so available drivers see
// them without polling.
type OrderEventsConsumer struct {
	reader  *kafka.Reader
	service DeliveryService
	logger  *zap.Logger
	topic   string
}

func NewOrderEventsConsumer(brokers []string, topic, groupID string, service DeliveryService, logger *zap.Logger) *OrderEventsConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	logger.Info("OrderEventsConsumer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
		zap.String("group_id", groupID),
	)
	return &OrderEventsConsumer{reader: r, service: service, logger: logger, topic: topic}
}

// Start blocks consuming messages until the context is cancelled.
func (c *OrderEventsConsumer) Start(ctx context.Context) {
	c.logger.Info("Starting OrderEventsConsumer", zap.String("topic", c.topic))
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Error reading order event", zap.Error(err))
			continue
		}

		var evt models.OrderEvent
		if err := json.Unmarshal(m.Value, &evt); err != nil {
			c.logger.Warn("Invalid order event JSON",
				zap.Error(err), zap.String("payload", string(m.Value)))
			continue
		}

		switch evt.EventType {
		case models.OrderEventCreated:
			c.logger.Info("Order created, broadcasting to drivers",
				zap.String("order_id", evt.OrderID))
			c.service.BroadcastOrderRequest(ctx, evt)
		case models.OrderEventStatusChanged:
			c.logger.Info("Order status changed upstream",
				zap.String("order_id", evt.OrderID),
				zap.String("order_status", evt.OrderStatus))
		default:
			c.logger.Debug("Ignoring order event",
				zap.String("event_type", evt.EventType))
		}
	}
}

func (c *OrderEventsConsumer) Close() error {
	return c.reader.Close()
}
