package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"elem-admin/internal/storage"
)

type Authenticator interface {
	Login(ctx context.Context, userID, password string) (storage.SessionUser, error)
}

type ctxKey struct{}

// BasicAuth checks every request against the login sheet and stores the session user in
// the request context.
func BasicAuth(log *slog.Logger, authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.BasicAuth"

			userID, password, ok := credentials(r)
			if !ok {
				requireAuth(w)
				return
			}

			user, err := authn.Login(r.Context(), userID, password)
			if err != nil {
				log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("error", err.Error())).
					Warn("authentication failed")
				if errors.Is(err, context.DeadlineExceeded) {
					http.Error(w, "Login service unavailable", http.StatusServiceUnavailable)
					return
				}
				requireAuth(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequirePage lets admins through and everyone else only with access to page.
func RequirePage(page string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				requireAuth(w)
				return
			}
			if !user.IsAdmin() && !user.CanAccess(page) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithUser(ctx context.Context, user storage.SessionUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (storage.SessionUser, bool) {
	user, ok := ctx.Value(ctxKey{}).(storage.SessionUser)
	return user, ok
}

func credentials(r *http.Request) (string, string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", "", false
	}

	creds, err := base64.StdEncoding.DecodeString(authHeader[6:])
	if err != nil {
		return "", "", false
	}

	credPair := strings.SplitN(string(creds), ":", 2)
	if len(credPair) != 2 {
		return "", "", false
	}
	return credPair[0], credPair[1], true
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Admin Area"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
