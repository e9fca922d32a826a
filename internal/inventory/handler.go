package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
	"github.com/pawpaw-commerce/fulfillment-go/internal/rabbit"
)

// StockAdjuster applies a bounded stock mutation. The storage layer owns the
// never-below-zero guard (product.ErrInsufficientStock).
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
}

// Alerter emits the low-stock notification after a committed adjustment.
type Alerter interface {
	PublishLowStock(ctx context.Context, productID string, stockRemaining int) error
}

// AdjustmentHandler consumes inventory adjustments with at-least-once
// semantics: the message is acknowledged only after the stock write, so a
// crash between the two redelivers the message and applies the change twice.
// Adjustments are not idempotent; the guarantee is "will apply if stock allows
// at the time it is processed", nothing stronger.
//
// Per message: malformed payloads are returned as errors for redelivery, an
// unknown product or a refused adjustment is logged and swallowed (a retry
// cannot change either), and storage failures are returned as errors so the
// broker requeues instead of dropping the adjustment.
func AdjustmentHandler(repo StockAdjuster, alerts Alerter, logger *log.Logger, lowStockThreshold int) rabbit.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		adj, err := events.DecodeInventoryAdjustment(body)
		if err != nil {
			return fmt.Errorf("decode adjustment: %w", err)
		}

		newStock, err := repo.AdjustStock(ctx, adj.ProductID, adj.QuantityChange)
		switch {
		case errors.Is(err, product.ErrNotFound):
			logger.Printf("product %s not found, dropping adjustment", adj.ProductID)
			return nil
		case errors.Is(err, product.ErrInsufficientStock):
			logger.Printf("warning: adjustment %+d for product %s refused, stock unchanged", adj.QuantityChange, adj.ProductID)
			return nil
		case err != nil:
			return fmt.Errorf("adjust stock for %s: %w", adj.ProductID, err)
		}

		logger.Printf("stock updated for product %s: %d", adj.ProductID, newStock)

		if newStock < lowStockThreshold {
			// Best effort: the stock update has already committed, so an
			// alert failure must not reject or retry this message.
			if err := alerts.PublishLowStock(ctx, adj.ProductID, newStock); err != nil {
				logger.Printf("publish low-stock alert for %s: %v", adj.ProductID, err)
			} else {
				logger.Printf("low stock for product %s: %d remaining", adj.ProductID, newStock)
			}
		}

		return nil
	}
}
