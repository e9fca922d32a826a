package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	return r
}

func NewOrderRouter(h *OrderHandler) http.Handler {
	r := newRouter()

	r.Get("/health", h.Health)
	r.Post("/api/orders/place", h.PlaceOrder)

	return r
}

func NewStockRouter(h *StockHandler) http.Handler {
	r := newRouter()

	r.Get("/health", h.Health)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/{productId}/stock", h.GetStock)
		r.Post("/", h.UpsertProduct)
	})

	return r
}

// NewHealthRouter serves the bare health endpoint for workers with no API.
func NewHealthRouter() http.Handler {
	r := newRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
