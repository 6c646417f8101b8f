package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/repository"
	"github.com/tip2talk/server/internal/service"
	"github.com/tip2talk/server/internal/validation"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ByUsername is the public creator page lookup.
func (h *ProfileHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := h.profileService.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		slog.Error("failed to get profile", "error", err, "username", username)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	var update service.ProfileUpdate
	err := decodeJSON(r, &update)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.profileService.Update(profile.ID, update)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())

	err := r.ParseMultipartForm(validation.ImageConstraints.MaxSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	updated, err := h.profileService.SetAvatar(profile.ID, file, header)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
