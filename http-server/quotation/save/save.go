package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/http-server/quotation/payload"
	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/service/draft"
	"elem-admin/internal/service/quotation"
	"elem-admin/internal/storage"
)

type QuotationCreator interface {
	Create(ctx context.Context, user storage.SessionUser, d *draft.Draft, opts quotation.Options) (*quotation.Result, error)
}

func SaveQuotation(log *slog.Logger, creator QuotationCreator, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.SaveQuotation"

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req payload.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		items, err := req.StorageItems()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		d := draft.New(req.Header())
		for i, it := range items {
			if _, err := d.AddItem(it); err != nil {
				reason, ok := payload.Reason(err)
				if !ok {
					reason = err.Error()
				}
				http.Error(w, fmt.Sprintf("item %d: %s", i+1, reason), http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		tr := quotation.NewTracker()
		res, err := creator.Create(ctx, user, d, quotation.Options{Tracker: tr})
		if err != nil {
			if reason, ok := payload.Reason(err); ok {
				http.Error(w, reason, http.StatusBadRequest)
				return
			}
			log.With(
				slog.String("op", op),
				slog.String("error", err.Error()),
			).Error("Failed to save quotation")
			http.Error(w, "Failed to save quotation", http.StatusBadGateway)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, res)
	}
}
