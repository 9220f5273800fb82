package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "notifications"

// AMQPMirror republishes bus events on a topic exchange. Routing keys are the
// bus topic with ':' flipped to '.' so consumers can bind order.* patterns.
type AMQPMirror struct {
	ch *amqp.Channel
}

func NewAMQPMirror(ch *amqp.Channel) (*AMQPMirror, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}
	return &AMQPMirror{ch: ch}, nil
}

func (m *AMQPMirror) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	routingKey := strings.ReplaceAll(ev.Topic, ":", ".")

	return m.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   ev.Timestamp,
		Type:        ev.Type,
		Body:        body,
	})
}
