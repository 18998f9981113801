package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoreau/aeos-dashboard/internal/analytics"
)

type AnalyticsHandler struct {
	svc    *analytics.Service
	logger *slog.Logger
}

func NewAnalyticsHandler(svc *analytics.Service, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger}
}

type hourlyResponse struct {
	Date   string                   `json:"date"`
	Hourly []analytics.HourlyBucket `json:"hourly"`
}

// Hourly returns the per-hour traffic breakdown for one day
// (?date=YYYY-MM-DD, default today).
func (h *AnalyticsHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	buckets, err := h.svc.HourlyTraffic(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to fetch hourly traffic", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch hourly traffic")
		return
	}
	respondJSON(w, http.StatusOK, hourlyResponse{Date: dateStr, Hourly: buckets})
}

type topAccessPointsResponse struct {
	AccessPoints []analytics.AccessPointTraffic `json:"access_points"`
}

// TopAccessPoints returns the busiest access points over a window
// (?hours=24&limit=10).
func (h *AnalyticsHandler) TopAccessPoints(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10, 50)
	hours := queryInt(r, "hours", 24, 720)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	points, err := h.svc.TopAccessPoints(r.Context(), since, limit)
	if err != nil {
		h.logger.Error("failed to fetch top access points", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch top access points")
		return
	}
	respondJSON(w, http.StatusOK, topAccessPointsResponse{AccessPoints: points})
}

type alertsResponse struct {
	Alerts []analytics.Alert `json:"alerts"`
}

// Alerts returns recent security alerts (?hours=24&limit=20).
func (h *AnalyticsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 200)
	hours := queryInt(r, "hours", 24, 720)
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	alerts, err := h.svc.SecurityAlerts(r.Context(), since, limit)
	if err != nil {
		h.logger.Error("failed to fetch alerts", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	respondJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
}
