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

	"elem-admin/internal/service/customers"
	"elem-admin/internal/storage"
)

type CustomerUpdater interface {
	Update(ctx context.Context, c storage.Customer) (storage.Customer, error)
}

func UpdateCustomer(log *slog.Logger, updater CustomerUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customer.UpdateCustomer"

		row, err := strconv.Atoi(chi.URLParam(r, "row"))
		if err != nil {
			http.Error(w, "Invalid row", http.StatusBadRequest)
			return
		}

		var c storage.Customer
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		c.RowIndex = row

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		saved, err := updater.Update(ctx, c)
		if err != nil {
			switch {
			case errors.Is(err, customers.ErrNameRequired):
				http.Error(w, customers.ErrNameRequired.Error(), http.StatusBadRequest)
			case errors.Is(err, customers.ErrNoRow), errors.Is(err, storage.ErrNotFound):
				http.Error(w, "Customer not found", http.StatusNotFound)
			default:
				log.With(slog.String("op", op), slog.Int("row", row), slog.String("error", err.Error())).
					Error("Failed to update customer")
				http.Error(w, "Failed to update customer", http.StatusBadGateway)
			}
			return
		}

		render.JSON(w, r, saved)
	}
}
