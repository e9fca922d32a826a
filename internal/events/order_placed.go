package events

import "time"

// OrderPlaced is the input to the fulfillment fan-out. It is produced by the
// order-placement flow and never mutated after publication.
type OrderPlaced struct {
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
