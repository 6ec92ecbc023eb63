package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"elem-admin/internal/service/customers"
)

type CustomerDeleter interface {
	Delete(ctx context.Context, rowIndex int) error
}

func DeleteCustomer(log *slog.Logger, deleter CustomerDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customer.DeleteCustomer"

		row, err := strconv.Atoi(chi.URLParam(r, "row"))
		if err != nil {
			http.Error(w, "Invalid row", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := deleter.Delete(ctx, row); err != nil {
			if errors.Is(err, customers.ErrNoRow) {
				http.Error(w, customers.ErrNoRow.Error(), http.StatusBadRequest)
				return
			}
			log.With(slog.String("op", op), slog.Int("row", row), slog.String("error", err.Error())).
				Error("Failed to delete customer")
			http.Error(w, "Failed to delete customer", http.StatusBadGateway)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
