package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
)

type VideoCallHandler struct {
	videoCallService *service.VideoCallService
}

func NewVideoCallHandler(videoCallService *service.VideoCallService) *VideoCallHandler {
	return &VideoCallHandler{videoCallService: videoCallService}
}

func (h *VideoCallHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	var in struct {
		CreatorID       string    `json:"creator_id"`
		DurationMinutes int       `json:"duration_minutes"`
		Price           int       `json:"price"`
		ScheduledAt     time.Time `json:"scheduled_at"`
	}
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	call, err := h.videoCallService.Schedule(service.ScheduleCallInput{
		CreatorID:       in.CreatorID,
		FanID:           profile.ID,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		ScheduledAt:     in.ScheduledAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "creator not found")
		case errors.Is(err, service.ErrNotACreator), errors.Is(err, service.ErrPastSchedule):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	slog.Info("video call scheduled", "call_id", call.ID, "creator_id", call.CreatorID, "fan_id", call.FanID)
	writeJSON(w, http.StatusCreated, call)
}

func (h *VideoCallHandler) List(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	calls, err := h.videoCallService.ForProfile(profile.ID)
	if err != nil {
		slog.Error("failed to list calls", "error", err, "profile_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to list calls")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
}

func (h *VideoCallHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	callID := r.PathValue("id")

	var in struct {
		Status     string  `json:"status"`
		MeetingURL *string `json:"meeting_url"`
	}
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	call, err := h.videoCallService.UpdateStatus(callID, profile.ID, in.Status, in.MeetingURL)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVideoCallNotFound):
			writeError(w, http.StatusNotFound, "call not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "not a participant in this call")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to update call", "error", err, "call_id", callID)
			writeError(w, http.StatusInternalServerError, "failed to update call")
		}
		return
	}

	writeJSON(w, http.StatusOK, call)
}
