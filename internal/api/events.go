package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoreau/aeos-dashboard/internal/classify"
	"github.com/jmoreau/aeos-dashboard/internal/domain"
	"github.com/jmoreau/aeos-dashboard/internal/source"
)

// EventHandler serves on-demand event reads straight off the source,
// independent of the live feed and its watermark.
type EventHandler struct {
	source source.Source
	logger *slog.Logger
}

func NewEventHandler(src source.Source, logger *slog.Logger) *EventHandler {
	return &EventHandler{source: src, logger: logger}
}

type recentEventsResponse struct {
	Events []domain.Event `json:"events"`
}

// Recent returns events from the last N hours, classified. The same
// classifier runs here as in the poller, so a historical re-query and
// the live push always agree on categories.
func (h *EventHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 500)
	hours := queryInt(r, "hours", 1, 168)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	events, err := h.source.FetchEventsSince(r.Context(), since, limit)
	if err != nil {
		h.logger.Error("failed to fetch recent events", "error", err)
		respondError(w, http.StatusBadGateway, "event source unavailable")
		return
	}

	for i := range events {
		events[i].Category = classify.Event(events[i].EventTypeName)
	}
	if events == nil {
		events = []domain.Event{}
	}

	respondJSON(w, http.StatusOK, recentEventsResponse{Events: events})
}

type accessPointsResponse struct {
	AccessPoints []domain.AccessPoint `json:"access_points"`
}

// AccessPoints returns the installation's access-point directory.
func (h *EventHandler) AccessPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.source.AccessPoints(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch access points", "error", err)
		respondError(w, http.StatusBadGateway, "event source unavailable")
		return
	}
	if points == nil {
		points = []domain.AccessPoint{}
	}
	respondJSON(w, http.StatusOK, accessPointsResponse{AccessPoints: points})
}
