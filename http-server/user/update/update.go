package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"elem-admin/http-server/user/save"
	"elem-admin/internal/service/users"
	"elem-admin/internal/storage"
)

type UserUpdater interface {
	Update(ctx context.Context, u storage.User) (storage.User, error)
	Deactivate(ctx context.Context, rowIndex int) error
}

func UpdateUser(log *slog.Logger, updater UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.UpdateUser"

		row, err := strconv.Atoi(chi.URLParam(r, "row"))
		if err != nil {
			http.Error(w, "Invalid row", http.StatusBadRequest)
			return
		}

		var req save.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		u := req.User()
		u.RowIndex = row

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		saved, err := updater.Update(ctx, u)
		if err != nil {
			writeError(w, log, op, row, err)
			return
		}

		render.JSON(w, r, saved)
	}
}

func DeactivateUser(log *slog.Logger, updater UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.DeactivateUser"

		row, err := strconv.Atoi(chi.URLParam(r, "row"))
		if err != nil {
			http.Error(w, "Invalid row", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := updater.Deactivate(ctx, row); err != nil {
			writeError(w, log, op, row, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": storage.StatusDeactivated})
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, op string, row int, err error) {
	switch {
	case errors.Is(err, users.ErrMissingFields):
		http.Error(w, users.ErrMissingFields.Error(), http.StatusBadRequest)
	case errors.Is(err, users.ErrProtected):
		http.Error(w, users.ErrProtected.Error(), http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "User not found", http.StatusNotFound)
	default:
		log.With(slog.String("op", op), slog.Int("row", row), slog.String("error", err.Error())).
			Error("Failed to update user")
		http.Error(w, "Failed to update user", http.StatusBadGateway)
	}
}
