package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cellar/internal/catalog"
	"github.com/fjod/go_cellar/internal/metrics"
	"github.com/fjod/go_cellar/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Catalog        catalog.Catalog
	Sessions       *session.Manager
	RequestTimeout time.Duration
	SessionMaxAge  time.Duration
	// Ping reports whether storage is reachable; nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	catalogHandler := NewCatalogHandler(cfg.Catalog)
	cartHandler := NewCartHandler(cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler()

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/health", healthHandler(cfg.Ping))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Use(SessionMiddleware(cfg.Sessions, cfg.SessionMaxAge))

		r.Get("/", withSession(catalogHandler.Home))

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", catalogHandler.List)
				r.Get("/{id}", catalogHandler.Get)
			})
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", withSession(cartHandler.GetCart))
				r.Delete("/", withSession(cartHandler.ClearCart))
				r.Post("/items", withSession(cartHandler.AddItem))
				r.Put("/items/{id}", withSession(cartHandler.UpdateQuantity))
				r.Delete("/items/{id}", withSession(cartHandler.RemoveItem))
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", withSession(checkoutHandler.Page))
			r.Post("/", withSession(checkoutHandler.Submit))
			r.Patch("/form", withSession(checkoutHandler.UpdateForm))
			r.Get("/success", withSession(checkoutHandler.Success))
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
