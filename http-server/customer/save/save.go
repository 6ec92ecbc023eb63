package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/service/customers"
	"elem-admin/internal/storage"
)

type CustomerCreator interface {
	Create(ctx context.Context, c storage.Customer) (storage.Customer, error)
}

type Request struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func SaveCustomer(log *slog.Logger, creator CustomerCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customer.SaveCustomer"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		c, err := creator.Create(ctx, storage.Customer{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
		})
		if err != nil {
			if errors.Is(err, customers.ErrNameRequired) {
				http.Error(w, customers.ErrNameRequired.Error(), http.StatusBadRequest)
				return
			}
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to create customer")
			http.Error(w, "Failed to create customer", http.StatusBadGateway)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, c)
	}
}
