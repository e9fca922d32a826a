package rabbit

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueuePublisher publishes JSON bodies to named queues through the default
// exchange. Every message is flagged persistent so it survives a broker
// restart once the durable queue has stored it.
type QueuePublisher struct {
	ch *amqp.Channel
}

// NewQueuePublisher opens a dedicated channel and declares the queues this
// publisher will target, so a publish never fails on missing infrastructure.
func NewQueuePublisher(client *Client, queues ...string) (*QueuePublisher, error) {
	ch, err := client.Channel()
	if err != nil {
		return nil, err
	}
	for _, q := range queues {
		if err := DeclareQueue(ch, q); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	return &QueuePublisher{ch: ch}, nil
}

func (p *QueuePublisher) Close() error {
	return p.ch.Close()
}

func (p *QueuePublisher) Publish(ctx context.Context, queue string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",    // default exchange
		queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
