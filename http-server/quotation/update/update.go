package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"elem-admin/http-server/quotation/payload"
	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/service/draft"
	"elem-admin/internal/service/quotation"
	"elem-admin/internal/storage"
)

type QuotationUpdater interface {
	Get(ctx context.Context, user storage.SessionUser, serialNo string) (*storage.Quotation, error)
	Update(ctx context.Context, d *draft.Draft, opts quotation.Options) (*quotation.Result, error)
}

// UpdateQuotation applies the submitted item list to the stored quotation. Items carrying
// a known item_no are edits, the others are new; stored items that are missing are deleted.
func UpdateQuotation(log *slog.Logger, updater QuotationUpdater, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.UpdateQuotation"

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		serialNo := chi.URLParam(r, "serial")
		if serialNo == "" {
			http.Error(w, "Missing serial number", http.StatusBadRequest)
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

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		persisted, err := updater.Get(ctx, user, serialNo)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Quotation not found", http.StatusNotFound)
				return
			}
			log.With(slog.String("op", op), slog.String("serial_no", serialNo), slog.String("error", err.Error())).
				Error("Failed to read quotation")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		header := req.Header()
		if !user.IsAdmin() {
			// ownership stays with the stored quotation
			header.EmployeeCode = persisted.EmployeeCode
		}

		d, err := draft.Merge(persisted, header, items)
		if err != nil {
			reason, ok := payload.Reason(err)
			if !ok {
				reason = err.Error()
			}
			http.Error(w, reason, http.StatusBadRequest)
			return
		}

		res, err := updater.Update(ctx, d, quotation.Options{Tracker: quotation.NewTracker()})
		if err != nil {
			if reason, ok := payload.Reason(err); ok {
				http.Error(w, reason, http.StatusBadRequest)
				return
			}
			log.With(slog.String("op", op), slog.String("serial_no", serialNo), slog.String("error", err.Error())).
				Error("Failed to update quotation")
			http.Error(w, "Failed to update quotation", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, res)
	}
}
