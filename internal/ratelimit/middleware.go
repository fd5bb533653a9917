package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/Katty020/Book-Review-Platform/internal/auth"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
	"github.com/Katty020/Book-Review-Platform/pkg/httputil"
)

// Middleware enforces the limiter on each request, keyed by the session's
// user ID when present and the client IP otherwise. Returns HTTP 429 when
// the quota is exhausted. A nil limiter disables limiting.
func Middleware(limiter *FixedWindowLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r)
			if !limiter.Allow(r.Context(), key) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("key", key),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, apperrors.RateLimited("too many requests, slow down"), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey prefers the authenticated user; anonymous requests fall back
// to the client IP.
func clientKey(r *http.Request) string {
	if session, ok := auth.FromContext(r.Context()); ok {
		return "user:" + session.UserID
	}
	return "ip:" + clientIP(r)
}

// clientIP extracts the client IP from X-Forwarded-For, X-Real-IP, or
// RemoteAddr in that order.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
