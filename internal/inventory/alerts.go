package inventory

import (
	"context"
	"fmt"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
)

// Wire is the queue transport for the alert side effect.
// Implemented by rabbit.QueuePublisher.
type Wire interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// LowStockPublisher sends low-stock-alert notifications to the management
// recipient configured for the worker.
type LowStockPublisher struct {
	wire    Wire
	queue   string
	toEmail string
	toName  string
}

func NewLowStockPublisher(wire Wire, queue, toEmail, toName string) *LowStockPublisher {
	return &LowStockPublisher{wire: wire, queue: queue, toEmail: toEmail, toName: toName}
}

func (p *LowStockPublisher) PublishLowStock(ctx context.Context, productID string, stockRemaining int) error {
	body, err := events.EncodeNotification(events.LowStockAlert{
		ToEmail:        p.toEmail,
		Name:           p.toName,
		ProductID:      productID,
		StockRemaining: stockRemaining,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", events.KindLowStockAlert, err)
	}
	return p.wire.Publish(ctx, p.queue, body)
}
