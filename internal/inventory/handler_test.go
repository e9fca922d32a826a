package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
)

type fakeStock struct {
	stocks map[string]int

	adjustErr error
	calls     int
}

func newFakeStock(initial map[string]int) *fakeStock {
	cp := make(map[string]int, len(initial))
	for k, v := range initial {
		cp[k] = v
	}
	return &fakeStock{stocks: cp}
}

func (f *fakeStock) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	f.calls++
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	current, ok := f.stocks[productID]
	if !ok {
		return 0, product.ErrNotFound
	}
	if current+delta < 0 {
		return 0, product.ErrInsufficientStock
	}
	f.stocks[productID] = current + delta
	return current + delta, nil
}

type fakeAlerter struct {
	alerts []struct {
		productID string
		remaining int
	}
	err error
}

func (f *fakeAlerter) PublishLowStock(ctx context.Context, productID string, stockRemaining int) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, struct {
		productID string
		remaining int
	}{productID, stockRemaining})
	return nil
}

func adjustmentBody(t *testing.T, productID string, change int) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{"productId": productID, "quantityChange": change})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestAdjustmentHandler(t *testing.T) {
	t.Parallel()

	const threshold = 10

	tests := map[string]struct {
		initial    map[string]int
		body       []byte
		repoErr    error
		alertErr   error
		wantErr    bool
		wantStock  map[string]int
		wantAlerts int
		wantRemain int
	}{
		"applies adjustment and persists exact stock": {
			initial:   map[string]int{"p1": 20},
			body:      []byte(`{"productId": "p1", "quantityChange": -5}`),
			wantStock: map[string]int{"p1": 15},
		},
		"emits low stock alert below threshold": {
			// threshold=10, currentStock=12, change=-5 -> 7, alert with 7
			initial:    map[string]int{"p1": 12},
			body:       []byte(`{"productId": "p1", "quantityChange": -5}`),
			wantStock:  map[string]int{"p1": 7},
			wantAlerts: 1,
			wantRemain: 7,
		},
		"no alert at or above threshold": {
			initial:   map[string]int{"p1": 15},
			body:      []byte(`{"productId": "p1", "quantityChange": -5}`),
			wantStock: map[string]int{"p1": 10},
		},
		"rejects adjustment that would go negative": {
			// currentStock=2, change=-5 -> acked, stock unchanged, no alert
			initial:   map[string]int{"p1": 2},
			body:      []byte(`{"productId": "p1", "quantityChange": -5}`),
			wantStock: map[string]int{"p1": 2},
		},
		"acks unknown product": {
			initial:   map[string]int{},
			body:      []byte(`{"productId": "ghost", "quantityChange": -1}`),
			wantStock: map[string]int{},
		},
		"malformed quantityChange is requeued": {
			initial:   map[string]int{"p1": 5},
			body:      []byte(`{"productId": "p1", "quantityChange": "oops"}`),
			wantErr:   true,
			wantStock: map[string]int{"p1": 5},
		},
		"storage failure is requeued": {
			initial:   map[string]int{"p1": 5},
			body:      []byte(`{"productId": "p1", "quantityChange": -1}`),
			repoErr:   errors.New("connection refused"),
			wantErr:   true,
			wantStock: map[string]int{"p1": 5},
		},
		"alert failure still acks the adjustment": {
			initial:   map[string]int{"p1": 8},
			body:      []byte(`{"productId": "p1", "quantityChange": -1}`),
			alertErr:  errors.New("notification queue unavailable"),
			wantStock: map[string]int{"p1": 7},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newFakeStock(tc.initial)
			repo.adjustErr = tc.repoErr
			alerts := &fakeAlerter{err: tc.alertErr}

			handler := AdjustmentHandler(repo, alerts, discard(), threshold)
			err := handler(context.Background(), tc.body)

			if tc.wantErr && err == nil {
				t.Fatalf("expected error (nack+requeue)")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for id, want := range tc.wantStock {
				if got := repo.stocks[id]; got != want {
					t.Fatalf("stock[%s]=%d want %d", id, got, want)
				}
			}
			if len(alerts.alerts) != tc.wantAlerts {
				t.Fatalf("alerts=%d want %d", len(alerts.alerts), tc.wantAlerts)
			}
			if tc.wantAlerts == 1 && alerts.alerts[0].remaining != tc.wantRemain {
				t.Fatalf("alert stockRemaining=%d want %d", alerts.alerts[0].remaining, tc.wantRemain)
			}
		})
	}
}

// Adjustments are at-least-once, not exactly-once: a redelivery after a crash
// between persist and ack applies the change twice. That is the documented
// contract, asserted here so nobody "fixes" a test around it silently.
func TestAdjustmentHandlerRedeliveryDoubleApplies(t *testing.T) {
	t.Parallel()

	repo := newFakeStock(map[string]int{"p1": 20})
	handler := AdjustmentHandler(repo, &fakeAlerter{}, discard(), 5)

	body := adjustmentBody(t, "p1", -3)

	if err := handler(context.Background(), body); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := handler(context.Background(), body); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	if got := repo.stocks["p1"]; got != 14 {
		t.Fatalf("stock=%d want 14 (double-applied), single application would be 17", got)
	}
	if repo.calls != 2 {
		t.Fatalf("AdjustStock calls=%d want 2", repo.calls)
	}
}

func TestAdjustmentHandlerAlertAddressing(t *testing.T) {
	t.Parallel()

	repo := newFakeStock(map[string]int{"p9": 3})
	alerts := &fakeAlerter{}
	handler := AdjustmentHandler(repo, alerts, discard(), 10)

	if err := handler(context.Background(), adjustmentBody(t, "p9", -1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("alerts=%d want 1", len(alerts.alerts))
	}
	got := alerts.alerts[0]
	if got.productID != "p9" || got.remaining != 2 {
		t.Fatalf("alert=%+v want product p9 with 2 remaining", got)
	}
}
