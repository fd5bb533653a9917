package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Katty020/Book-Review-Platform/pkg/httpclient"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() Claims {
	return Claims{
		UserID: "user-1",
		Name:   "Jordan Reed",
		Email:  "jordan@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
}

func TestVerifier_ValidToken(t *testing.T) {
	v := NewVerifier(testSecret, 30*time.Second)
	token := signToken(t, testSecret, validClaims())

	session, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "Jordan Reed", session.Name)
	assert.Equal(t, "jordan@example.com", session.Email)
}

func TestVerifier_SubjectFallback(t *testing.T) {
	v := NewVerifier(testSecret, 30*time.Second)
	claims := validClaims()
	claims.UserID = ""
	token := signToken(t, testSecret, claims)

	session, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
}

func TestVerifier_WrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, 30*time.Second)
	token := signToken(t, "another-secret", validClaims())

	session, err := v.Verify(token)
	assert.Nil(t, session)
	assert.Error(t, err)
}

func TestVerifier_ExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(-time.Hour))
	token := signToken(t, testSecret, claims)

	session, err := v.Verify(token)
	assert.Nil(t, session)
	assert.Error(t, err)
}

func TestVerifier_LeewayAbsorbsSkew(t *testing.T) {
	v := NewVerifier(testSecret, time.Minute)
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(-10 * time.Second))
	token := signToken(t, testSecret, claims)

	session, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
}

func TestVerifier_NoIdentity(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	claims := validClaims()
	claims.UserID = ""
	claims.Subject = ""
	token := signToken(t, testSecret, claims)

	session, err := v.Verify(token)
	assert.Nil(t, session)
	assert.Error(t, err)
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	s := &Session{UserID: "user-1"}
	ctx = NewContext(ctx, s)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)
}

func TestSessionMiddleware_NoTokenPassesThrough(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	var sawSession bool
	handler := SessionMiddleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawSession)
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	var got *Session
	handler := SessionMiddleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
}

func TestSessionMiddleware_InvalidTokenRejected(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	handler := SessionMiddleware(v, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestRequireSession(t *testing.T) {
	protected := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/books", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/books", nil)
	req = req.WithContext(NewContext(req.Context(), &Session{UserID: "user-1"}))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserInfoClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","name":"Jordan Reed","email":"jordan@example.com"}`))
	}))
	defer srv.Close()

	client := NewUserInfoClient(srv.URL, httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("auth-userinfo"),
	))

	session, err := client.Fetch(context.Background(), "token-123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "Jordan Reed", session.Name)
}

func TestUserInfoClient_Fetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewUserInfoClient(srv.URL, httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("auth-userinfo-401"),
	))

	session, err := client.Fetch(context.Background(), "token-123")
	assert.Nil(t, session)
	assert.Error(t, err)
}
