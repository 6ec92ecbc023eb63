package generate_excel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"elem-admin/internal/middleware/auth"
	gen "elem-admin/internal/service/generate-excel"
	"elem-admin/internal/storage"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateExcel(ctx context.Context, user storage.SessionUser, filter gen.Filter) ([]byte, error) {
	args := m.Called(ctx, user, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var user = storage.SessionUser{ID: "admin", Role: storage.RoleAdmin}

func get(generator GenerateExcelHandler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.WithUser(req.Context(), user))
	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.Default(), generator).ServeHTTP(rr, req)
	return rr
}

func TestGenerateReportExcel(t *testing.T) {
	generator := new(MockGenerator)
	generator.On("GenerateExcel", mock.Anything, user, gen.Filter{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Term: "asha",
	}).Return([]byte("PK"), nil)

	rr := get(generator, "/api/report/excel?from=2026-01-01&q=asha")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", rr.Body.String())
	generator.AssertExpectations(t)
}

func TestGenerateReportExcel_Errors(t *testing.T) {
	generator := new(MockGenerator)
	generator.On("GenerateExcel", mock.Anything, user, gen.Filter{}).Return(nil, errors.New("timeout"))

	assert.Equal(t, http.StatusBadRequest, get(generator, "/api/report/excel?to=yesterday").Code)
	assert.Equal(t, http.StatusInternalServerError, get(generator, "/api/report/excel").Code)
}
