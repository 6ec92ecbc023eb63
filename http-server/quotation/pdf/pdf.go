package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/storage"
)

type PDFRenderer interface {
	PDF(ctx context.Context, user storage.SessionUser, serialNo string) ([]byte, string, error)
}

// DownloadPDF renders a stored quotation on demand. It does not touch the stored link.
func DownloadPDF(log *slog.Logger, renderer PDFRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quotation.DownloadPDF"

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		serialNo := chi.URLParam(r, "serial")

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		data, fileName, err := renderer.PDF(ctx, user, serialNo)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Quotation not found", http.StatusNotFound)
				return
			}
			log.With(
				slog.String("op", op),
				slog.String("serial_no", serialNo),
				slog.String("error", err.Error()),
			).Error("Failed to render pdf")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}
}
