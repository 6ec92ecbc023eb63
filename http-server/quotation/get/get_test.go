package get

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"elem-admin/internal/middleware/auth"
	"elem-admin/internal/storage"
)

type MockQuotationReader struct {
	mock.Mock
}

func (m *MockQuotationReader) List(ctx context.Context, user storage.SessionUser, term string) ([]*storage.Quotation, error) {
	args := m.Called(ctx, user, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Quotation), args.Error(1)
}

func (m *MockQuotationReader) Get(ctx context.Context, user storage.SessionUser, serialNo string) (*storage.Quotation, error) {
	args := m.Called(ctx, user, serialNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Quotation), args.Error(1)
}

var user = storage.SessionUser{ID: "asha", EmployeeCode: "EMP-7"}

func router(reader QuotationReader) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	})
	r.Get("/api/quotations", GetQuotations(slog.Default(), reader))
	r.Get("/api/quotations/{serial}", GetQuotation(slog.Default(), reader))
	return r
}

func TestGetQuotations(t *testing.T) {
	reader := new(MockQuotationReader)
	reader.On("List", mock.Anything, user, "asha").Return([]*storage.Quotation{
		{SerialNo: "QT-002", Items: []storage.Item{{Qty: 2, Price: 500, Discount: 10}, {Qty: 1, Price: 1000}}},
	}, nil)

	rr := httptest.NewRecorder()
	router(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotations?q=asha", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []map[string]any
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "QT-002", resp[0]["serial_no"])
	assert.Equal(t, 1900.0, resp[0]["total"])
}

func TestGetQuotations_StoreError(t *testing.T) {
	reader := new(MockQuotationReader)
	reader.On("List", mock.Anything, user, "").Return(nil, errors.New("timeout"))

	rr := httptest.NewRecorder()
	router(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotations", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGetQuotation(t *testing.T) {
	reader := new(MockQuotationReader)
	reader.On("Get", mock.Anything, user, "QT-001").Return(&storage.Quotation{SerialNo: "QT-001", State: storage.StateConfirmed}, nil)
	reader.On("Get", mock.Anything, user, "QT-009").Return(nil, fmt.Errorf("get: %w", storage.ErrNotFound))

	rr := httptest.NewRecorder()
	router(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotations/QT-001", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"confirmed"`)

	rr = httptest.NewRecorder()
	router(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/quotations/QT-009", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
