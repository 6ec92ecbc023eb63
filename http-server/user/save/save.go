package save

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

type UserCreator interface {
	Create(ctx context.Context, u storage.User) (storage.User, error)
}

// Request is also the body of the update endpoint.
type Request struct {
	EmployeeCode string   `json:"employee_code"`
	Name         string   `json:"user_name"`
	UserID       string   `json:"user_id"`
	Password     string   `json:"password"`
	Role         string   `json:"role"`
	PageAccess   []string `json:"page_access"`
	Status       string   `json:"status"`
}

func (req Request) User() storage.User {
	return storage.User{
		EmployeeCode: req.EmployeeCode,
		Name:         req.Name,
		UserID:       req.UserID,
		Password:     req.Password,
		Role:         req.Role,
		PageAccess:   req.PageAccess,
		Status:       req.Status,
	}
}

func SaveUser(log *slog.Logger, creator UserCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.SaveUser"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		u, err := creator.Create(ctx, req.User())
		if err != nil {
			switch {
			case errors.Is(err, users.ErrMissingFields):
				http.Error(w, users.ErrMissingFields.Error(), http.StatusBadRequest)
			case errors.Is(err, users.ErrDuplicateID):
				http.Error(w, users.ErrDuplicateID.Error(), http.StatusConflict)
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to create user")
				http.Error(w, "Failed to create user", http.StatusBadGateway)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, u)
	}
}
