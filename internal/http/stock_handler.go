package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
)

// StockHandler is the small read/seed surface the inventory worker exposes
// next to its consumer.
type StockHandler struct {
	repo product.Repository
}

func NewStockHandler(repo product.Repository) *StockHandler {
	return &StockHandler{repo: repo}
}

func (h *StockHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	p, err := h.repo.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *StockHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if p.ID == "" || p.AvailableStock < 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.repo.Upsert(r.Context(), p); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
