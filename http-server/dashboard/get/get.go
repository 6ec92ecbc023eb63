package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/service/dashboard"
)

type StatsProvider interface {
	Stats(ctx context.Context) (*dashboard.Stats, error)
}

func GetDashboard(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.GetDashboard"

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		st, err := stats.Stats(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to load dashboard")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, st)
	}
}
