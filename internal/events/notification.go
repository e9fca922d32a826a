package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Notification kinds carried in the wire-level "type" tag.
const (
	KindNewOrder      = "new-order"
	KindLowStockAlert = "low-stock-alert"
)

// ErrUnknownNotification marks a "type" tag outside the closed set of kinds.
var ErrUnknownNotification = errors.New("unknown notification type")

// Notification is the closed set of messages the notification consumer
// dispatches. Each variant is self-contained; the consumer performs no
// further lookups.
type Notification interface {
	Kind() string

	// Addressee is the recipient email for the rendered message.
	Addressee() string

	notification()
}

// NewOrder confirms a placed order to the customer.
type NewOrder struct {
	ToEmail     string         `json:"toEmail"`
	Subject     string         `json:"subject"`
	Name        string         `json:"name"`
	OrderID     string         `json:"orderId"`
	OrderDate   time.Time      `json:"orderDate"`
	TotalAmount float64        `json:"totalAmount"`
	Items       []NotifiedItem `json:"items"`
}

type NotifiedItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (NewOrder) Kind() string { return KindNewOrder }

func (n NewOrder) Addressee() string { return n.ToEmail }

func (NewOrder) notification() {}

// LowStockAlert warns the management recipient that a product is running low.
type LowStockAlert struct {
	ToEmail        string `json:"toEmail"`
	Name           string `json:"name"`
	ProductID      string `json:"productId"`
	StockRemaining int    `json:"stockRemaining"`
}

func (LowStockAlert) Kind() string { return KindLowStockAlert }

func (a LowStockAlert) Addressee() string { return a.ToEmail }

func (LowStockAlert) notification() {}

// EncodeNotification stamps the variant's "type" tag and marshals it.
func EncodeNotification(n Notification) ([]byte, error) {
	switch v := n.(type) {
	case NewOrder:
		return json.Marshal(struct {
			Type string `json:"type"`
			NewOrder
		}{KindNewOrder, v})
	case LowStockAlert:
		return json.Marshal(struct {
			Type string `json:"type"`
			LowStockAlert
		}{KindLowStockAlert, v})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownNotification, n)
	}
}

// DecodeNotification peeks the "type" tag and decodes the matching variant.
// Tags outside the closed set fail with ErrUnknownNotification instead of
// producing a half-formed message.
func DecodeNotification(body []byte) (Notification, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}

	switch head.Type {
	case KindNewOrder:
		var n NewOrder
		if err := json.Unmarshal(body, &n); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", KindNewOrder, err)
		}
		return n, nil
	case KindLowStockAlert:
		var a LowStockAlert
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", KindLowStockAlert, err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotification, head.Type)
	}
}
