package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

// maxBodySize caps JSON request bodies. Media uploads use the multipart
// limits in the validation package instead.
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeErrorCode adds a machine-readable code so clients can branch on the
// failure without parsing the message.
func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}

func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

// parsePrice parses a form amount in minor units, rejecting zero and
// negatives.
func parsePrice(raw string) (int, error) {
	price, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, errors.New("price must be positive")
	}
	return price, nil
}
