package quotation

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"elem-admin/internal/config"
	"elem-admin/internal/storage"
	"elem-admin/internal/worker"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) QuotationRows(ctx context.Context) ([]storage.QuotationRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.QuotationRow), args.Error(1)
}

func (m *MockStore) Quotation(ctx context.Context, serialNo string) (*storage.Quotation, error) {
	args := m.Called(ctx, serialNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Quotation), args.Error(1)
}

func (m *MockStore) InsertQuotationRows(ctx context.Context, rows []storage.QuotationRow) error {
	return m.Called(ctx, rows).Error(0)
}

func (m *MockStore) UpdateQuotationItem(ctx context.Context, serialNo string, itemNo int, row storage.QuotationRow) error {
	return m.Called(ctx, serialNo, itemNo, row).Error(0)
}

func (m *MockStore) DeleteQuotationItem(ctx context.Context, serialNo string, itemNo int) error {
	return m.Called(ctx, serialNo, itemNo).Error(0)
}

func (m *MockStore) RenumberQuotationItems(ctx context.Context, serialNo string, mappings []storage.ItemNoMapping) error {
	return m.Called(ctx, serialNo, mappings).Error(0)
}

func (m *MockStore) UploadImage(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	args := m.Called(ctx, name, mimeType, data)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UploadPDF(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, q *storage.Quotation) ([]byte, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPipeline() config.Pipeline {
	return config.Pipeline{
		UpdateBatchSize:   5,
		CloseDelay:        10 * time.Millisecond,
		PDFWait:           time.Second,
		BackgroundTimeout: 5 * time.Second,
	}
}

func newTestService(store *MockStore, renderer *MockRenderer, cfg config.Pipeline) (*Service, *worker.Supervisor) {
	sup := worker.NewSupervisor(context.Background(), discardLogger(), 5*time.Second)
	s := New(discardLogger(), store, renderer, sup, cfg)
	s.now = func() time.Time { return time.Date(2026, 4, 2, 11, 30, 0, 0, time.UTC) }
	return s, sup
}
