package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/livekart/orderflow/internal/httpx/middlewares"
	"github.com/livekart/orderflow/internal/identity"
)

// NewRouter assembles the HTTP routes. CORS is permissive for browser
// clients; preflight requests are answered with 200 and no body. Catalog
// reads and the health probe are public, order routes require a verified
// session.
func NewRouter(handler *Handler, verifier identity.Verifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", HeaderIdempotencyKey},
		MaxAge:         300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProductByID)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireAuth(verifier))
		r.Post("/orders", handler.CreateOrder)
		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrderByID)
	})

	return otelhttp.NewHandler(r, "orderd")
}
