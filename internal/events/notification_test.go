package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeNotification(t *testing.T) {
	t.Parallel()

	orderDate := time.Date(2024, 11, 18, 10, 30, 0, 0, time.UTC)

	tests := map[string]struct {
		body        string
		want        Notification
		wantErr     bool
		wantUnknown bool
	}{
		"new-order": {
			body: `{
				"type": "new-order",
				"toEmail": "customer@mail.com",
				"subject": "Order Confirmation",
				"name": "Tran Beo",
				"orderId": "order-1234",
				"orderDate": "2024-11-18T10:30:00Z",
				"totalAmount": 150.75,
				"items": [{"id": "item001", "name": "Wireless Mouse", "price": 25.99}]
			}`,
			want: NewOrder{
				ToEmail:     "customer@mail.com",
				Subject:     "Order Confirmation",
				Name:        "Tran Beo",
				OrderID:     "order-1234",
				OrderDate:   orderDate,
				TotalAmount: 150.75,
				Items:       []NotifiedItem{{ID: "item001", Name: "Wireless Mouse", Price: 25.99}},
			},
		},
		"low-stock-alert": {
			body: `{
				"type": "low-stock-alert",
				"toEmail": "ops@mail.com",
				"name": "Inventory Manager",
				"productId": "item001",
				"stockRemaining": 5
			}`,
			want: LowStockAlert{
				ToEmail:        "ops@mail.com",
				Name:           "Inventory Manager",
				ProductID:      "item001",
				StockRemaining: 5,
			},
		},
		"unknown type": {
			body:        `{"type": "order-shipped", "toEmail": "a@b.c"}`,
			wantErr:     true,
			wantUnknown: true,
		},
		"missing type": {
			body:        `{"toEmail": "a@b.c"}`,
			wantErr:     true,
			wantUnknown: true,
		},
		"not json": {
			body:    `{{`,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeNotification([]byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if tc.wantUnknown && !errors.Is(err, ErrUnknownNotification) {
					t.Fatalf("expected ErrUnknownNotification, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch want := tc.want.(type) {
			case NewOrder:
				n, ok := got.(NewOrder)
				if !ok {
					t.Fatalf("decoded %T, want NewOrder", got)
				}
				if n.OrderID != want.OrderID || n.ToEmail != want.ToEmail || !n.OrderDate.Equal(want.OrderDate) {
					t.Fatalf("decoded %+v, want %+v", n, want)
				}
				if len(n.Items) != 1 || n.Items[0] != want.Items[0] {
					t.Fatalf("items %+v, want %+v", n.Items, want.Items)
				}
			case LowStockAlert:
				a, ok := got.(LowStockAlert)
				if !ok {
					t.Fatalf("decoded %T, want LowStockAlert", got)
				}
				if a != want {
					t.Fatalf("decoded %+v, want %+v", a, want)
				}
			}
		})
	}
}

func TestEncodeNotificationStampsType(t *testing.T) {
	t.Parallel()

	body, err := EncodeNotification(LowStockAlert{
		ToEmail:        "ops@mail.com",
		Name:           "Inventory Manager",
		ProductID:      "p1",
		StockRemaining: 3,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("encoded payload not JSON: %v", err)
	}
	if raw["type"] != KindLowStockAlert {
		t.Fatalf("type=%v want %s", raw["type"], KindLowStockAlert)
	}

	// Round-trips through the decoder as the same variant.
	got, err := DecodeNotification(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	alert, ok := got.(LowStockAlert)
	if !ok || alert.StockRemaining != 3 {
		t.Fatalf("round trip gave %+v", got)
	}
}
