package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/service"
)

// AuthMiddleware checks for a bearer token and adds the profile to context if
// valid. Invalid or missing tokens are not an error here; RequireAuth decides
// which routes demand one.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			profile, err := authService.ProfileFromToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithProfile(r.Context(), profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the request carries a valid authenticated profile
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := ctxkeys.Profile(r.Context())
		if profile == nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireCreator ensures the authenticated profile is a creator
func RequireCreator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := ctxkeys.Profile(r.Context())
		if profile == nil {
			unauthorized(w)
			return
		}
		if !profile.IsCreator {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "creator account required"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	// Browsers cannot set headers on websocket upgrades, so the token may
	// arrive as a query parameter instead.
	return r.URL.Query().Get("token")
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
