package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"elem-admin/internal/service/catalog"
	"elem-admin/internal/storage"
)

type CatalogLookup interface {
	Lookup(ctx context.Context, code string) (storage.CatalogEntry, error)
}

type Response struct {
	Entry        storage.CatalogEntry `json:"entry"`
	Item         storage.Item         `json:"item"`
	AvailableQty float64              `json:"available_qty"`
}

// SearchCatalog finds an inventory entry by serial or model number and returns it along
// with the line item it prefills.
func SearchCatalog(log *slog.Logger, lookup CatalogLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catalog.SearchCatalog"

		code := r.URL.Query().Get("code")

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		entry, err := lookup.Lookup(ctx, code)
		switch {
		case err == nil:
		case errors.Is(err, catalog.ErrEmptyTerm):
			http.Error(w, catalog.ErrEmptyTerm.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, catalog.ErrNotFound):
			http.Error(w, catalog.ErrNotFound.Error(), http.StatusNotFound)
			return
		case errors.Is(err, catalog.ErrLoading):
			w.Header().Set("Retry-After", "2")
			http.Error(w, catalog.ErrLoading.Error(), http.StatusServiceUnavailable)
			return
		case errors.Is(err, catalog.ErrUnavailable):
			http.Error(w, catalog.ErrUnavailable.Error(), http.StatusServiceUnavailable)
			return
		default:
			log.With(slog.String("op", op), slog.String("code", code), slog.String("error", err.Error())).
				Error("Catalog lookup failed")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		item, available := catalog.Enrich(storage.Item{Qty: 1}, entry)
		render.JSON(w, r, Response{Entry: entry, Item: item, AvailableQty: available})
	}
}
