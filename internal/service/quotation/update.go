package quotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"elem-admin/internal/service/draft"
	"elem-admin/internal/storage"
)

var ErrNoSerial = errors.New("quotation has no serial number")

// Update reconciles an edited draft with its rows: pending deletions and image uploads run
// together, then persisted items are renumbered, rewritten in waves and new items are
// appended. A failed deletion stops the save before anything is renumbered. The
// regenerated PDF link is written to the last row in the background.
func (s *Service) Update(ctx context.Context, d *draft.Draft, opts Options) (*Result, error) {
	const op = "service.quotation.Update"

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
	if h.SerialNo == "" {
		tr.fail()
		return nil, fmt.Errorf("%s: %w", op, ErrNoSerial)
	}

	log := s.log.With(slog.String("op", op), slog.String("serial_no", h.SerialNo))

	plan := Plan(d.Items())
	placements := plan.Ordered()
	last := len(placements) - 1

	tr.Set(PhaseProcessingFiles)
	pdfDone := s.startPDF(ctx, h, placements)

	var (
		urls     []string
		warnings []string
		g        errgroup.Group
	)
	g.Go(func() error {
		urls, warnings = s.resolveImages(ctx, h.SerialNo, placements)
		return nil
	})
	g.Go(func() error {
		return s.deletePending(ctx, h.SerialNo, d.PendingDeletions())
	})
	if err := g.Wait(); err != nil {
		tr.fail()
		log.With(slog.String("error", err.Error())).Error("failed to delete removed items")
		return nil, fmt.Errorf("%s: delete: %w", op, err)
	}

	tr.Set(PhaseSaving)

	if !plan.Identity() {
		if err := s.store.RenumberQuotationItems(ctx, h.SerialNo, plan.Mapping); err != nil {
			tr.fail()
			log.With(slog.String("error", err.Error())).Error("failed to renumber items")
			return nil, fmt.Errorf("%s: renumber: %w", op, err)
		}
	}

	rowFor := func(i int) storage.QuotationRow {
		link := ""
		if i == last {
			link = h.PDFLink
		}
		p := placements[i]
		return row(h, p.Item, p.ItemNo, urls[i], link)
	}

	offset := 0
	for _, wave := range Waves(plan.Updates, s.cfg.UpdateBatchSize) {
		eg, egCtx := errgroup.WithContext(ctx)
		for j, p := range wave {
			i := offset + j
			eg.Go(func() error {
				if err := s.store.UpdateQuotationItem(egCtx, h.SerialNo, p.ItemNo, rowFor(i)); err != nil {
					return fmt.Errorf("item %d: %w", p.ItemNo, err)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			tr.fail()
			log.With(slog.String("error", err.Error())).Error("failed to update items")
			return nil, fmt.Errorf("%s: update: %w", op, err)
		}
		offset += len(wave)
	}

	if len(plan.Inserts) > 0 {
		rows := make([]storage.QuotationRow, 0, len(plan.Inserts))
		for i := len(plan.Updates); i < len(placements); i++ {
			rows = append(rows, rowFor(i))
		}
		if err := s.store.InsertQuotationRows(ctx, rows); err != nil {
			tr.fail()
			log.With(slog.String("error", err.Error())).Error("failed to insert new items")
			return nil, fmt.Errorf("%s: insert: %w", op, err)
		}
	}

	tr.Set(PhaseSucceeded)
	log.Info("quotation updated",
		slog.Int("updated", len(plan.Updates)),
		slog.Int("inserted", len(plan.Inserts)),
		slog.Int("deleted", len(d.PendingDeletions())),
	)

	s.patchPDFLink(h, placements[last], urls[last], pdfDone)
	s.closeLater(tr, opts)

	return &Result{
		Quotation:  savedView(h, placements, urls),
		Warnings:   warnings,
		PDFPending: true,
	}, nil
}

// deletePending removes rows of items dropped from the draft. Renumbering must not run while
// a removed row still holds its item number, so any failure is returned.
func (s *Service) deletePending(ctx context.Context, serialNo string, deletions []draft.Deletion) error {
	const op = "service.quotation.deletePending"

	g, gCtx := errgroup.WithContext(ctx)
	for _, del := range deletions {
		if del.SerialNo == "" {
			del.SerialNo = serialNo
		}
		g.Go(func() error {
			if err := s.store.DeleteQuotationItem(gCtx, del.SerialNo, del.ItemNo); err != nil {
				s.log.With(
					slog.String("op", op),
					slog.String("serial_no", del.SerialNo),
					slog.Int("item_no", del.ItemNo),
					slog.String("error", err.Error()),
				).Error("failed to delete item")
				return fmt.Errorf("item %d: %w", del.ItemNo, err)
			}
			return nil
		})
	}
	return g.Wait()
}
