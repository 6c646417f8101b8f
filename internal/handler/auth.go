package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type authResponse struct {
	Token   string         `json:"token"`
	Profile *model.Profile `json:"profile"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.authService.Signup(in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	token, err := h.authService.GenerateJWT(profile)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "profile_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	slog.Info("profile signed up", "profile_id", profile.ID, "is_creator", profile.IsCreator)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decodeJSON(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.authService.Login(in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.authService.GenerateJWT(profile)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "profile_id", profile.ID)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	writeJSON(w, http.StatusOK, profile)
}
