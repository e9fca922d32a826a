package rabbit

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client owns the process-wide AMQP connection. Publishers and consumers each
// open their own channel off it so flow control and channel errors stay scoped
// to one component.
type Client struct {
	conn *amqp.Connection
}

// Dial connects to the broker. An unreachable broker is fatal at startup;
// callers are expected to exit and let the supervisor restart the process.
func Dial(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return &Client{conn: conn}, nil
}

func MustDial(url string) *Client {
	client, err := Dial(url)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return client
}

func (c *Client) Channel() (*amqp.Channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

// CloseNotify reports the connection closing, expectedly or not. Main loops
// select on it so a dropped connection ends the process instead of being
// silently swallowed; unacked deliveries become the broker's to redeliver.
func (c *Client) CloseNotify() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// DeclareQueue declares name as a durable queue. Redeclaring with the same
// options is a no-op; a durability mismatch comes back from the broker as a
// precondition-failed channel error, surfaced here for startup to fail on.
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}
