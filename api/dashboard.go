package api

import (
	"net/http"

	"github.com/skillflow/skillflow/internal/dashboard"
)

type DashboardHandler struct {
	agg *dashboard.Aggregator
}

func NewDashboardHandler(agg *dashboard.Aggregator) *DashboardHandler {
	return &DashboardHandler{agg: agg}
}

// Get serves the dashboard snapshot. The aggregator degrades to defaults on
// storage failures, so this endpoint always answers 200.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.agg.Snapshot(r.Context()), http.StatusOK)
}
