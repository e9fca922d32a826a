package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
	"github.com/pawpaw-commerce/fulfillment-go/internal/orders"
	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
	"github.com/pawpaw-commerce/fulfillment-go/internal/user"
)

type OrderPublisher interface {
	PublishOrder(ctx context.Context, ev events.OrderPlaced, rcpt orders.Recipient, details []orders.ItemDetail) ([]orders.Outcome, error)
}

type UserDirectory interface {
	Get(ctx context.Context, userID string) (user.User, error)
}

type ProductCatalog interface {
	Get(ctx context.Context, productID string) (product.Product, error)
}

type OrderStore interface {
	Create(ctx context.Context, o *orders.Order) error
}

type OrderHandler struct {
	users   UserDirectory
	catalog ProductCatalog
	store   OrderStore
	pub     OrderPublisher
	logger  *log.Logger
}

func NewOrderHandler(users UserDirectory, catalog ProductCatalog, store OrderStore, pub OrderPublisher, logger *log.Logger) *OrderHandler {
	return &OrderHandler{users: users, catalog: catalog, store: store, pub: pub, logger: logger}
}

func (h *OrderHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type placeOrderRequest struct {
	UserID string `json:"userId"`
	Items  []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	TotalAmount float64 `json:"totalAmount"`
}

// PlaceOrder persists the order and hands it to the fulfillment fan-out. A
// failed fan-out returns a generic failure; the order row is already written
// and compensation is the operator's call (the outcomes are logged).
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || len(req.Items) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()

	u, err := h.users.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("find user %s: %v", req.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	details := make([]orders.ItemDetail, 0, len(req.Items))
	for _, it := range req.Items {
		p, err := h.catalog.Get(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				http.Error(w, "unknown product "+it.ProductID, http.StatusBadRequest)
				return
			}
			h.logger.Printf("find product %s: %v", it.ProductID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		details = append(details, orders.ItemDetail{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
	}

	o := &orders.Order{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		TotalAmount: req.TotalAmount,
		CreatedAt:   time.Now().UTC(),
	}
	for _, d := range details {
		o.Items = append(o.Items, orders.Item{ProductID: d.ProductID, Quantity: d.Quantity, Price: d.Price})
	}

	if err := h.store.Create(ctx, o); err != nil {
		h.logger.Printf("create order %s: %v", o.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ev := events.OrderPlaced{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, events.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	outcomes, err := h.pub.PublishOrder(ctx, ev, orders.Recipient{Email: u.Email, Name: u.Username}, details)
	if err != nil {
		for _, out := range outcomes {
			if out.Err != nil {
				h.logger.Printf("order %s: publish %s to %s failed: %v", o.ID, out.Event, out.Queue, out.Err)
			}
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Printf("order %s placed by user %s, %d events published", o.ID, u.ID, len(outcomes))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order placed successfully",
		"orderId": o.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
