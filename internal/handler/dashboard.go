package handler

import (
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/service"
)

type DashboardHandler struct {
	statsService *service.StatsService
}

func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// CreatorStats returns the creator dashboard numbers: earnings this month and
// all time, fan count, messages received, upcoming calls, and tip goal
// progress.
func (h *DashboardHandler) CreatorStats(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	stats, err := h.statsService.CreatorStats(profile)
	if err != nil {
		slog.Error("failed to load creator stats", "error", err, "creator_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// FanStats returns the fan dashboard numbers: tips sent, unlocks bought, and
// chatted creators.
func (h *DashboardHandler) FanStats(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	stats, err := h.statsService.FanStats(profile.ID)
	if err != nil {
		slog.Error("failed to load fan stats", "error", err, "fan_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
