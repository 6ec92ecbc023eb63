package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/storage"
)

type QuotationReader interface {
	List(ctx context.Context, user storage.SessionUser, term string) ([]*storage.Quotation, error)
	Get(ctx context.Context, user storage.SessionUser, serialNo string) (*storage.Quotation, error)
}

type Summary struct {
	*storage.Quotation
	Total float64 `json:"total"`
}

func GetQuotations(log *slog.Logger, reader QuotationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.GetQuotations"

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		quotations, err := reader.List(ctx, user, r.URL.Query().Get("q"))
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch quotations")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		out := make([]Summary, 0, len(quotations))
		for _, q := range quotations {
			out = append(out, Summary{Quotation: q, Total: storage.QuotationTotal(q)})
		}

		render.JSON(w, r, out)
	}
}

func GetQuotation(log *slog.Logger, reader QuotationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.GetQuotation"

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		serialNo := chi.URLParam(r, "serial")

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		q, err := reader.Get(ctx, user, serialNo)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.With(slog.String("op", op), slog.String("serial_no", serialNo)).Warn("Quotation not found")
				http.Error(w, "Quotation not found", http.StatusNotFound)
				return
			}
			log.With(
				slog.String("op", op),
				slog.String("serial_no", serialNo),
				slog.String("error", err.Error()),
			).Error("Failed to fetch quotation")
			http.Error(w, "Internal server error", http.StatusBadGateway)
			return
		}

		render.JSON(w, r, Summary{Quotation: q, Total: storage.QuotationTotal(q)})
	}
}
