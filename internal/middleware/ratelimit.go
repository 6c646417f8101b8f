package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter applies a sliding-window request cap per client IP.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go rl.reapLoop()
	return rl
}

// Allow records a request for ip and reports whether it fits the window.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	recent := rl.seen[ip][:0]
	for _, at := range rl.seen[ip] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= rl.limit {
		rl.seen[ip] = recent
		return false
	}

	rl.seen[ip] = append(recent, now)
	return true
}

// reapLoop drops idle IPs so the map does not grow without bound.
func (rl *RateLimiter) reapLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.window)
		for ip, times := range rl.seen {
			idle := true
			for _, at := range times {
				if at.After(cutoff) {
					idle = false
					break
				}
			}
			if idle {
				delete(rl.seen, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitAuth caps signup/login attempts at 5 per 15 minutes per IP.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return rateLimit(NewRateLimiter(5, 15*time.Minute))
}

// RateLimitPayment caps payment creation at 10 per minute per IP.
func RateLimitPayment() func(http.HandlerFunc) http.HandlerFunc {
	return rateLimit(NewRateLimiter(10, time.Minute))
}

func rateLimit(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// clientIP resolves the originating address, trusting proxy headers first.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
