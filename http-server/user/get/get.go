package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/storage"
)

type UserLister interface {
	List(ctx context.Context) ([]storage.User, error)
}

type Response struct {
	Users []storage.User `json:"users"`
	Pages []string       `json:"pages"`
}

func GetUsers(log *slog.Logger, lister UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.GetUsers"

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		users, err := lister.List(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch users")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, Response{Users: users, Pages: storage.SystemPages})
	}
}
