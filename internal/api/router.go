package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoreau/aeos-dashboard/internal/analytics"
	"github.com/jmoreau/aeos-dashboard/internal/source"
	ws "github.com/jmoreau/aeos-dashboard/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router. analyticsSvc and
// pool are nil when no database is configured; the analytics routes
// are simply not mounted in that case.
func NewRouter(src source.Source, hub *ws.Hub, analyticsSvc *analytics.Service, pool *pgxpool.Pool, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(corsMiddleware)

	eventHandler := NewEventHandler(src, logger)

	// Live feed
	r.Get("/ws", hub.HandleWebSocket)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", HealthHandler(src, pool))

		r.Get("/events/recent", eventHandler.Recent)
		r.Get("/accesspoints", eventHandler.AccessPoints)

		if analyticsSvc != nil {
			analyticsHandler := NewAnalyticsHandler(analyticsSvc, logger)
			r.Get("/analytics/hourly", analyticsHandler.Hourly)
			r.Get("/analytics/top-access-points", analyticsHandler.TopAccessPoints)
			r.Get("/alerts", analyticsHandler.Alerts)
		}
	})

	return r
}

// corsMiddleware lets the dashboard frontend call the API from any
// origin during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
