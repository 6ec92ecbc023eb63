// Package quotation saves quotations to the quotations sheet: the create pipeline, the
// reconciliation of edits and the read side used by the list and detail pages.
package quotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"elem-admin/internal/config"
	"elem-admin/internal/service/allocator"
	"elem-admin/internal/service/draft"
	"elem-admin/internal/service/quotepdf"
	"elem-admin/internal/storage"
)

var ErrNoItems = errors.New("please add at least one item")

const (
	serialPrefix    = "QT-"
	serialWidth     = 3
	timestampLayout = "2006-01-02 15:04:05"
)

type Store interface {
	QuotationRows(ctx context.Context) ([]storage.QuotationRow, error)
	Quotation(ctx context.Context, serialNo string) (*storage.Quotation, error)
	InsertQuotationRows(ctx context.Context, rows []storage.QuotationRow) error
	UpdateQuotationItem(ctx context.Context, serialNo string, itemNo int, row storage.QuotationRow) error
	DeleteQuotationItem(ctx context.Context, serialNo string, itemNo int) error
	RenumberQuotationItems(ctx context.Context, serialNo string, mappings []storage.ItemNoMapping) error
	UploadImage(ctx context.Context, name, mimeType string, data []byte) (string, error)
	UploadPDF(ctx context.Context, name string, data []byte) (string, error)
}

// Background runs work detached from the request; worker.Supervisor implements it.
type Background interface {
	Go(name string, fn func(ctx context.Context) error)
	After(delay time.Duration, name string, fn func(ctx context.Context) error)
}

type Service struct {
	log      *slog.Logger
	store    Store
	renderer quotepdf.Renderer
	bg       Background
	cfg      config.Pipeline
	serials  *allocator.Snapshot[storage.QuotationRow]
	now      func() time.Time
}

func New(log *slog.Logger, store Store, renderer quotepdf.Renderer, bg Background, cfg config.Pipeline) *Service {
	if cfg.UpdateBatchSize <= 0 {
		cfg.UpdateBatchSize = 5
	}
	if cfg.BackgroundTimeout <= 0 {
		cfg.BackgroundTimeout = 2 * time.Minute
	}
	return &Service{
		log:      log,
		store:    store,
		renderer: renderer,
		bg:       bg,
		cfg:      cfg,
		serials:  allocator.NewSnapshot(log, "quotations", store.QuotationRows),
		now:      time.Now,
	}
}

// Options are per-save hooks. OnSuccess runs as a background job once the composer is
// closed, typically to refresh a list.
type Options struct {
	Tracker   *Tracker
	OnSuccess func(ctx context.Context) error
}

// Result is what the caller sees once the rows are written.
type Result struct {
	Quotation  *storage.Quotation `json:"quotation"`
	Warnings   []string           `json:"warnings,omitempty"`
	PDFPending bool               `json:"pdf_pending"`
}

// List returns the quotations visible to user, newest first, filtered by term.
func (s *Service) List(ctx context.Context, user storage.SessionUser, term string) ([]*storage.Quotation, error) {
	const op = "service.quotation.List"

	rows, err := s.store.QuotationRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.serials.Seed(rows)

	all := storage.GroupQuotations(storage.VisibleTo(user, rows))
	out := make([]*storage.Quotation, 0, len(all))
	for _, q := range all {
		if storage.MatchQuotation(q, term) {
			out = append(out, q)
		}
	}
	return out, nil
}

// Get re-reads one quotation. Quotations of other employees look missing to non-admins.
func (s *Service) Get(ctx context.Context, user storage.SessionUser, serialNo string) (*storage.Quotation, error) {
	const op = "service.quotation.Get"

	q, err := s.store.Quotation(ctx, serialNo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !visible(user, q) {
		return nil, fmt.Errorf("%s: quotation %s: %w", op, serialNo, storage.ErrNotFound)
	}
	return q, nil
}

// PDF renders a stored quotation on demand.
func (s *Service) PDF(ctx context.Context, user storage.SessionUser, serialNo string) ([]byte, string, error) {
	const op = "service.quotation.PDF"

	q, err := s.Get(ctx, user, serialNo)
	if err != nil {
		return nil, "", err
	}

	data, err := s.renderer.Render(ctx, q)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return data, quotepdf.FileName(q), nil
}

func visible(user storage.SessionUser, q *storage.Quotation) bool {
	code := strings.TrimSpace(user.OwnerCode())
	return user.IsAdmin() || code == "" || strings.EqualFold(strings.TrimSpace(q.EmployeeCode), code)
}

// row flattens one item with the quotation header.
func row(h draft.Header, it storage.Item, itemNo int, imageURL, pdfLink string) storage.QuotationRow {
	return storage.QuotationRow{
		Timestamp:            h.Date,
		SerialNo:             h.SerialNo,
		EmployeeCode:         h.EmployeeCode,
		CustomerID:           h.Customer.ID,
		CustomerName:         h.Customer.Name,
		Phone:                h.Customer.Phone,
		Email:                h.Customer.Email,
		Title:                it.Title,
		ImageURL:             imageURL,
		Qty:                  it.Qty,
		Price:                it.Price,
		Discount:             it.Discount,
		Subtotal:             storage.LineTotal(it),
		ArchitectCode:        h.Architect.Code,
		ArchitectName:        h.Architect.Name,
		ArchitectNumber:      h.Architect.Number,
		PDFLink:              pdfLink,
		ItemNo:               itemNo,
		SerialNumber:         it.SerialNumber,
		ModelNo:              it.ModelNo,
		Size:                 it.Size,
		Color:                it.Color,
		Specification:        it.Specification,
		Remarks:              it.Remarks,
		Address:              h.Customer.Address,
		ExpectedDeliveryDate: h.ExpectedDeliveryDate,
		Make:                 it.Make,
	}
}

// savedView is the optimistic quotation returned after a save; the next read confirms it.
func savedView(h draft.Header, placements []Placement, urls []string) *storage.Quotation {
	q := &storage.Quotation{
		SerialNo:             h.SerialNo,
		Date:                 h.Date,
		EmployeeCode:         h.EmployeeCode,
		Customer:             h.Customer,
		Architect:            h.Architect,
		ExpectedDeliveryDate: h.ExpectedDeliveryDate,
		PDFLink:              h.PDFLink,
		State:                storage.StatePending,
	}
	for i, p := range placements {
		it := p.Item
		it.ItemNo = p.ItemNo
		it.RowIndex = 0
		it.Image = storage.ImageRef{URL: urls[i]}
		q.Items = append(q.Items, it)
	}
	return q
}
