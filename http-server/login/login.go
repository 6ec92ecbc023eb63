package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/service/users"
	"elem-admin/internal/storage"
)

type Authenticator interface {
	Login(ctx context.Context, userID, password string) (storage.SessionUser, error)
}

type Request struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// Login returns the session user for the SPA. The SPA then sends the same credentials as
// basic auth on every call.
func Login(log *slog.Logger, authn Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.Login"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		user, err := authn.Login(ctx, req.UserID, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, users.ErrInvalidCredentials):
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			case errors.Is(err, users.ErrDeactivated):
				http.Error(w, "Your account has been deactivated. Please contact administrator.", http.StatusForbidden)
			case errors.Is(err, users.ErrNoAccess):
				http.Error(w, "You do not have access to any pages. Please contact administrator.", http.StatusForbidden)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Login failed")
				http.Error(w, "Login service unavailable", http.StatusBadGateway)
			}
			return
		}

		log.Info("user logged in", slog.String("user_id", user.ID))
		render.JSON(w, r, user)
	}
}
