package rabbit

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// HandlerFunc processes one delivery body. A nil return acknowledges the
// message; an error negatively acknowledges it with requeue so the broker can
// redeliver or apply its dead-letter policy. Permanent failures that must not
// be retried are the handler's job to log and swallow.
type HandlerFunc func(ctx context.Context, body []byte) error

// Consumer pulls one queue on its own channel and dispatches deliveries to a
// handler one at a time, in broker delivery order.
type Consumer struct {
	ch     *amqp.Channel
	queue  string
	tag    string
	logger *log.Logger
	done   chan struct{}
}

func NewConsumer(client *Client, queue, tag string, prefetch int, logger *log.Logger) (*Consumer, error) {
	ch, err := client.Channel()
	if err != nil {
		return nil, err
	}
	if err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{
		ch:     ch,
		queue:  queue,
		tag:    tag,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Start begins consuming until ctx is cancelled. Cancellation stops new
// deliveries but lets the in-flight ones finish before the channel closes, so
// no acknowledgment state is lost. Done reports when the loop has drained.
func (c *Consumer) Start(ctx context.Context, handler HandlerFunc) error {
	msgs, err := c.ch.Consume(
		c.queue,
		c.tag,
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	go func() {
		defer close(c.done)
		defer c.ch.Close()

		for {
			select {
			case <-ctx.Done():
				c.logger.Printf("stopping %s consumer", c.queue)
				if err := c.ch.Cancel(c.tag, false); err != nil {
					c.logger.Printf("cancel %s consumer: %v", c.queue, err)
				}
				drainCtx := context.WithoutCancel(ctx)
				for msg := range msgs {
					c.dispatch(drainCtx, msg, handler)
				}
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Printf("deliveries channel closed for %s", c.queue)
					return
				}
				c.dispatch(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handler HandlerFunc) {
	if err := handler(ctx, msg.Body); err != nil {
		c.logger.Printf("handle %s message: %v", c.queue, err)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Printf("nack %s message: %v", c.queue, nackErr)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		c.logger.Printf("ack %s message: %v", c.queue, err)
	}
}
