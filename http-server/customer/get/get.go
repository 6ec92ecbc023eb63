package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/service/customers"
	"elem-admin/internal/storage"
)

type CustomerLister interface {
	List(ctx context.Context) ([]storage.Customer, error)
}

func GetCustomers(log *slog.Logger, lister CustomerLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customer.GetCustomers"

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		list, err := lister.List(ctx)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch customers")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, customers.Filter(list, r.URL.Query().Get("q")))
	}
}
