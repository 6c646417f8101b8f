package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tip2talk/server/internal/ctxkeys"
	"github.com/tip2talk/server/internal/model"
)

func TestRequireAuth(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	rec := httptest.NewRecorder()
	RequireAuth(next)(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req = req.WithContext(ctxkeys.WithProfile(req.Context(), &model.Profile{ID: "p1"}))

	rec = httptest.NewRecorder()
	RequireAuth(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireCreator(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	fan := &model.Profile{ID: "p1", IsCreator: false}
	req := httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
	req = req.WithContext(ctxkeys.WithProfile(req.Context(), fan))

	rec := httptest.NewRecorder()
	RequireCreator(next)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	creator := &model.Profile{ID: "p2", IsCreator: true}
	req = httptest.NewRequest(http.MethodGet, "/api/inbox", nil)
	req = req.WithContext(ctxkeys.WithProfile(req.Context(), creator))

	rec = httptest.NewRecorder()
	RequireCreator(next)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/ws/inbox?token=query456", nil)
	assert.Equal(t, "query456", bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, bearerToken(req))
}
