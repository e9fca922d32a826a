package orders

import "time"

type Order struct {
	ID          string    `json:"orderId"`
	UserID      string    `json:"userId"`
	Items       []Item    `json:"items"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Item struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
