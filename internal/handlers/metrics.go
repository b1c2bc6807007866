package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/services"
)

// MetricsHandler serves a JSON snapshot of coordinator metrics.
type MetricsHandler struct {
	metrics *services.Metrics
}

func NewMetricsHandler(metrics *services.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.metrics.Snapshot()); err != nil {
		http.Error(w, "failed to encode metrics", http.StatusInternalServerError)
	}
}

// HealthHandler reports liveness plus the coarse health status.
func HealthHandler(metrics *services.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snapshot := metrics.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if snapshot.HealthStatus == "critical" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": snapshot.HealthStatus})
	}
}
