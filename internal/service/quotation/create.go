package quotation

import (
	"context"
	"fmt"
	"log/slog"

	"elem-admin/internal/service/allocator"
	"elem-admin/internal/service/draft"
	"elem-admin/internal/storage"
)

// Create saves a new quotation: one row per item in a single batch insert. Image and PDF
// failures only produce warnings; a rejected insert fails the save and nothing already
// uploaded is rolled back.
func (s *Service) Create(ctx context.Context, user storage.SessionUser, d *draft.Draft, opts Options) (*Result, error) {
	const op = "service.quotation.Create"

	tr := opts.Tracker
	if tr == nil {
		tr = NewTracker()
	}

	tr.Set(PhaseValidating)
	if d == nil || d.Len() == 0 {
		tr.fail()
		return nil, fmt.Errorf("%s: %w", op, ErrNoItems)
	}

	h := d.Header
	h.SerialNo = allocator.Next(ctx, s.serials, func(r storage.QuotationRow) string { return r.SerialNo }, serialPrefix, serialWidth)
	h.Date = s.now().Format(timestampLayout)
	// Only admins may file a quotation under another employee.
	if !user.IsAdmin() || h.EmployeeCode == "" {
		h.EmployeeCode = user.OwnerCode()
	}

	items := d.Items()
	for i := range items {
		items[i].ItemNo = 0
		items[i].RowIndex = 0
	}
	placements := Plan(items).Ordered()

	log := s.log.With(slog.String("op", op), slog.String("serial_no", h.SerialNo))

	tr.Set(PhaseProcessingFiles)
	pdfDone := s.startPDF(ctx, h, placements)
	urls, warnings := s.resolveImages(ctx, h.SerialNo, placements)
	pdfURL, pdfPending, pdfWarning := s.awaitPDF(ctx, h.SerialNo, pdfDone)
	if pdfWarning != "" {
		warnings = append(warnings, pdfWarning)
	}

	tr.Set(PhaseSaving)
	last := len(placements) - 1
	rows := make([]storage.QuotationRow, 0, len(placements))
	for i, p := range placements {
		link := ""
		if i == last {
			link = pdfURL
		}
		rows = append(rows, row(h, p.Item, p.ItemNo, urls[i], link))
	}

	if err := s.store.InsertQuotationRows(ctx, rows); err != nil {
		tr.fail()
		log.With(slog.String("error", err.Error())).Error("failed to save quotation")
		return nil, fmt.Errorf("%s: insert rows: %w", op, err)
	}

	tr.Set(PhaseSucceeded)
	log.Info("quotation saved", slog.Int("items", len(rows)), slog.Bool("pdf_pending", pdfPending))

	if pdfPending {
		s.patchPDFLink(h, placements[last], urls[last], pdfDone)
	}
	s.closeLater(tr, opts)

	h.PDFLink = pdfURL
	return &Result{
		Quotation:  savedView(h, placements, urls),
		Warnings:   warnings,
		PDFPending: pdfPending,
	}, nil
}
