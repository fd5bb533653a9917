package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
	"github.com/Katty020/Book-Review-Platform/pkg/httputil"
	"github.com/Katty020/Book-Review-Platform/pkg/logger"
)

// SessionMiddleware resolves the bearer token on every request, when
// present, into a Session on the context. A missing token is not an
// error here: health and metrics routes carry none, and RequireSession
// guards the API routes.
//
// When a userinfo client is supplied the session's name and email are
// refreshed from the auth provider; a userinfo failure falls back to the
// token's own claims.
func SessionMiddleware(verifier *Verifier, userInfo *UserInfoClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid or expired session token"), nil)
				return
			}

			if userInfo != nil {
				if fresh, err := userInfo.Fetch(r.Context(), token); err == nil && fresh.UserID == session.UserID {
					session = fresh
				}
			}

			ctx := NewContext(r.Context(), session)
			ctx = logger.WithUserID(ctx, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no resolved session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			httputil.WriteError(w, r, apperrors.Unauthorized("sign in to continue"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
