package routes

import (
	"capacity-bknd/internal/config"
	"capacity-bknd/internal/handlers"
	"capacity-bknd/internal/logger"
	"capacity-bknd/internal/metrics"
	mdlwr "capacity-bknd/internal/middleware"
	"capacity-bknd/internal/services"

	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the capacity API. db may be nil when no database source is
// configured; gatherer serves /metrics.
func NewRouter(db services.TableSource, cfg *config.Config, logr *logger.Logger, reg *metrics.Registry, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mdlwr.Metrics(reg, logr.Logger))

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Run-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	capacitySvc := services.NewCapacityService(cfg, db, reg, logr.Logger)
	capacityHandler := handlers.NewCapacityHandler(capacitySvc, cfg.MaxUploadBytes(), logr.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/capacity", func(r chi.Router) {
			r.Post("/reconcile", capacityHandler.Reconcile)
			r.Post("/reconcile/export", capacityHandler.Export)
			r.Post("/detail", capacityHandler.Detail)
			r.Get("/database", capacityHandler.ReconcileDatabase)
		})
	})

	return r
}
