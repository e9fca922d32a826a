package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
)

// Wire is the queue transport the fan-out publishes through.
// Implemented by rabbit.QueuePublisher.
type Wire interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

type Queues struct {
	Inventory    string
	Notification string
}

// Recipient is the customer the order confirmation goes to.
type Recipient struct {
	Email string
	Name  string
}

// ItemDetail carries the catalog fields the confirmation email needs, resolved
// by the caller so every published event stays self-contained.
type ItemDetail struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int
}

// Outcome records the result of one message publish within a fan-out.
type Outcome struct {
	Queue string
	Event string
	Err   error
}

// PublishError reports a fan-out where at least one message failed. The
// outcomes list every message attempted, so callers can see exactly which
// publishes landed and decide on compensating action.
type PublishError struct {
	Outcomes []Outcome
}

func (e *PublishError) Error() string {
	failed := 0
	for _, o := range e.Outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("publish order events: %d of %d messages failed", failed, len(e.Outcomes))
}

type Publisher struct {
	wire   Wire
	queues Queues
}

func NewPublisher(wire Wire, queues Queues) *Publisher {
	return &Publisher{wire: wire, queues: queues}
}

// PublishOrder fans one order placement out into exactly one new-order
// notification and one inventory adjustment per line item, each line adjusting
// stock by the full ordered quantity. The publishes across the two queues are
// not atomic: every message is attempted even after an earlier failure, the
// per-message outcomes are always returned, and a *PublishError accompanies
// them whenever any message failed.
func (p *Publisher) PublishOrder(ctx context.Context, ev events.OrderPlaced, rcpt Recipient, details []ItemDetail) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(ev.Items)+1)

	note := events.NewOrder{
		ToEmail:     rcpt.Email,
		Subject:     "Order Confirmation",
		Name:        rcpt.Name,
		OrderID:     ev.OrderID,
		OrderDate:   ev.CreatedAt,
		TotalAmount: ev.TotalAmount,
	}
	for _, d := range details {
		note.Items = append(note.Items, events.NotifiedItem{ID: d.ProductID, Name: d.Name, Price: d.Price})
	}
	outcomes = append(outcomes, p.publishNotification(ctx, note))

	for _, it := range ev.Items {
		adj := events.InventoryAdjustment{
			ProductID:      it.ProductID,
			QuantityChange: -it.Quantity,
		}
		outcomes = append(outcomes, p.publishAdjustment(ctx, adj))
	}

	for _, o := range outcomes {
		if o.Err != nil {
			return outcomes, &PublishError{Outcomes: outcomes}
		}
	}
	return outcomes, nil
}

func (p *Publisher) publishNotification(ctx context.Context, note events.NewOrder) Outcome {
	out := Outcome{Queue: p.queues.Notification, Event: events.KindNewOrder}
	body, err := events.EncodeNotification(note)
	if err != nil {
		out.Err = fmt.Errorf("marshal %s: %w", events.KindNewOrder, err)
		return out
	}
	out.Err = p.wire.Publish(ctx, p.queues.Notification, body)
	return out
}

func (p *Publisher) publishAdjustment(ctx context.Context, adj events.InventoryAdjustment) Outcome {
	out := Outcome{Queue: p.queues.Inventory, Event: "inventory-adjustment"}
	body, err := json.Marshal(adj)
	if err != nil {
		out.Err = fmt.Errorf("marshal adjustment: %w", err)
		return out
	}
	out.Err = p.wire.Publish(ctx, p.queues.Inventory, body)
	return out
}
