// publisher.go
package rabbit

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"shipping-label-service/internal/service"
)

// ExchangeLabelsPurchased is the fanout exchange downstream consumers
// (notifications, accounting) bind to.
const ExchangeLabelsPurchased = "labels_purchased"

// Publisher emits purchase events over RabbitMQ. It satisfies
// service.PurchasePublisher.
type Publisher struct {
	ch     *amqp091.Channel
	logger *zap.Logger
}

// NewPublisher declares the fanout exchange and returns a publisher
// bound to it.
func NewPublisher(ch *amqp091.Channel, logger *zap.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		ExchangeLabelsPurchased,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	logger.Info("declared exchange", zap.String("exchange", ExchangeLabelsPurchased))
	return &Publisher{ch: ch, logger: logger}, nil
}

func (p *Publisher) PublishLabelsPurchased(ctx context.Context, event service.PurchaseEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeLabelsPurchased,
		"", // fanout ignores the routing key
		false,
		false,
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	p.logger.Info("published purchase event",
		zap.String("order_id", event.OrderID),
		zap.Int("shipments", len(event.ShipmentIDs)),
	)
	return nil
}
