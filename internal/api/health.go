package api

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoreau/aeos-dashboard/internal/source"
)

// HealthResponse reports backend reachability. A stale live feed shows
// up here, not as errors pushed to subscribers.
type HealthResponse struct {
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthHandler probes the event source and, when configured, the
// analytics database. pool may be nil.
func HealthHandler(src source.Source, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Source:    "ok",
			Database:  "ok",
			Timestamp: time.Now().UTC(),
		}

		if err := src.Ping(r.Context()); err != nil {
			resp.Source = "error: " + err.Error()
			resp.Status = "degraded"
		}

		if pool == nil {
			resp.Database = "not configured"
		} else if err := pool.Ping(r.Context()); err != nil {
			resp.Database = "error: " + err.Error()
			resp.Status = "degraded"
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
