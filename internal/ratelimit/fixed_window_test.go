package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Katty020/Book-Review-Platform/internal/auth"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewFixedWindowLimiter(client, "test:ratelimit", limit, window)
	require.NoError(t, err)
	return limiter, mr
}

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := NewFixedWindowLimiter(client, "p", 0, time.Minute)
	assert.Error(t, err)

	_, err = NewFixedWindowLimiter(client, "p", 10, 0)
	assert.Error(t, err)

	_, err = NewFixedWindowLimiter(nil, "p", 10, time.Minute)
	assert.Error(t, err)
}

func TestFixedWindowLimiter_AllowsWithinQuota(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "user:1"), "request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow(ctx, "user:1"))
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "user:1"))
	assert.False(t, limiter.Allow(ctx, "user:1"))
	assert.True(t, limiter.Allow(ctx, "user:2"))
}

func TestFixedWindowLimiter_FailsClosedOnRedisError(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute)
	mr.Close()

	assert.False(t, limiter.Allow(context.Background(), "user:1"))
}

func TestMiddleware_LimitsByUser(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Middleware(limiter, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	makeReq := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/books", nil)
		req = req.WithContext(auth.NewContext(req.Context(), &auth.Session{UserID: userID}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, makeReq("user-1").Code)
	rec := makeReq("user-1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// Another user is unaffected.
	assert.Equal(t, http.StatusCreated, makeReq("user-2").Code)
}

func TestMiddleware_AnonymousFallsBackToIP(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Middleware(limiter, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req.RemoteAddr = "198.51.100.7:4411"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMiddleware_NilLimiterDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Middleware(nil, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/books", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	assert.Equal(t, "192.0.2.4", clientIP(req))
}
