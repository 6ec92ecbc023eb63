package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/storage"
)

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) PDF(ctx context.Context, user storage.SessionUser, serialNo string) ([]byte, string, error) {
	args := m.Called(ctx, user, serialNo)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

var user = storage.SessionUser{ID: "admin", Role: storage.RoleAdmin}

func serve(renderer PDFRenderer, serial string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/quotations/{serial}/pdf", DownloadPDF(slog.Default(), renderer))

	req := httptest.NewRequest(http.MethodGet, "/api/quotations/"+serial+"/pdf", nil)
	req = req.WithContext(auth.WithUser(req.Context(), user))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestDownloadPDF(t *testing.T) {
	renderer := new(MockPDFRenderer)
	renderer.On("PDF", mock.Anything, user, "QT-001").Return([]byte("%PDF-1.3"), "Quotation_QT-001_Asha.pdf", nil)

	rr := serve(renderer, "QT-001")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Quotation_QT-001_Asha.pdf")
	assert.Equal(t, "%PDF-1.3", rr.Body.String())
}

func TestDownloadPDF_Errors(t *testing.T) {
	renderer := new(MockPDFRenderer)
	renderer.On("PDF", mock.Anything, user, "QT-404").Return(nil, "", fmt.Errorf("get: %w", storage.ErrNotFound))
	renderer.On("PDF", mock.Anything, user, "QT-500").Return(nil, "", errors.New("font"))

	assert.Equal(t, http.StatusNotFound, serve(renderer, "QT-404").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(renderer, "QT-500").Code)
}
