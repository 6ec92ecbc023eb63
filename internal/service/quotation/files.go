package quotation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"elem-admin/internal/service/draft"
	"elem-admin/internal/service/quotepdf"
	"elem-admin/internal/storage"
	"elem-admin/internal/storage/sheets"
)

// resolveImages turns every item image into a URL. Uploads run concurrently; a failed
// upload leaves an empty URL and a warning.
func (s *Service) resolveImages(ctx context.Context, serialNo string, placements []Placement) ([]string, []string) {
	const op = "service.quotation.resolveImages"

	urls := make([]string, len(placements))
	var (
		mu       sync.Mutex
		warnings []string
	)

	var g errgroup.Group
	for i, p := range placements {
		g.Go(func() error {
			url, err := s.resolveImage(ctx, serialNo, p.ItemNo, p.Item.Image)
			if err != nil {
				s.log.With(
					slog.String("op", op),
					slog.String("serial_no", serialNo),
					slog.Int("item_no", p.ItemNo),
					slog.String("error", err.Error()),
				).Warn("image upload failed, saving without image")

				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("image for %q could not be uploaded", p.Item.Title))
				mu.Unlock()
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	return urls, warnings
}

func (s *Service) resolveImage(ctx context.Context, serialNo string, itemNo int, ref storage.ImageRef) (string, error) {
	if f := ref.Pending; f != nil {
		return s.upload(ctx, serialNo, itemNo, f.Name, f.MimeType, f.Data)
	}
	if ref.URL != "" && !isDataURI(ref.URL) {
		return ref.URL, nil
	}

	for _, src := range []string{ref.URL, ref.Preview} {
		if isDataURI(src) {
			mimeType, data, err := sheets.ParseDataURI(src)
			if err != nil {
				return "", err
			}
			return s.upload(ctx, serialNo, itemNo, "", mimeType, data)
		}
	}

	return ref.Preview, nil
}

func (s *Service) upload(ctx context.Context, serialNo string, itemNo int, name, mimeType string, data []byte) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if name == "" {
		name = "image." + strings.TrimPrefix(mimeType, "image/")
	}
	return s.store.UploadImage(ctx, fmt.Sprintf("%s_item%d_%s", serialNo, itemNo, name), mimeType, data)
}

func isDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

type pdfResult struct {
	url string
	err error
}

// startPDF renders and uploads the quotation PDF. It is detached from ctx's cancellation
// because the link may be written after the request has returned.
func (s *Service) startPDF(ctx context.Context, h draft.Header, placements []Placement) <-chan pdfResult {
	done := make(chan pdfResult, 1)

	q := &storage.Quotation{
		SerialNo:             h.SerialNo,
		Date:                 h.Date,
		EmployeeCode:         h.EmployeeCode,
		Customer:             h.Customer,
		Architect:            h.Architect,
		ExpectedDeliveryDate: h.ExpectedDeliveryDate,
		State:                storage.StatePending,
	}
	for _, p := range placements {
		it := p.Item
		it.ItemNo = p.ItemNo
		q.Items = append(q.Items, it)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BackgroundTimeout)
		defer cancel()

		data, err := s.renderer.Render(ctx, q)
		if err != nil {
			done <- pdfResult{err: fmt.Errorf("render: %w", err)}
			return
		}
		url, err := s.store.UploadPDF(ctx, quotepdf.FileName(q), data)
		if err != nil {
			done <- pdfResult{err: fmt.Errorf("upload: %w", err)}
			return
		}
		done <- pdfResult{url: url}
	}()

	return done
}

// awaitPDF joins the PDF branch for at most PDFWait. pending is true when the branch is
// still running and the link has to be patched in later.
func (s *Service) awaitPDF(ctx context.Context, serialNo string, done <-chan pdfResult) (url string, pending bool, warning string) {
	const op = "service.quotation.awaitPDF"

	wait := time.NewTimer(s.cfg.PDFWait)
	defer wait.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			s.log.With(
				slog.String("op", op),
				slog.String("serial_no", serialNo),
				slog.String("error", r.err.Error()),
			).Warn("pdf generation failed, saving without pdf")
			return "", false, "PDF could not be generated"
		}
		return r.url, false, ""
	case <-wait.C:
	case <-ctx.Done():
	}

	s.log.With(slog.String("op", op), slog.String("serial_no", serialNo)).
		Info("pdf still in progress, link will be attached in background")
	return "", true, ""
}

// patchPDFLink rewrites the last row once the PDF upload finishes.
func (s *Service) patchPDFLink(h draft.Header, last Placement, imageURL string, done <-chan pdfResult) {
	s.bg.Go("quotation.pdf-link "+h.SerialNo, func(ctx context.Context) error {
		var r pdfResult
		select {
		case r = <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if r.err != nil {
			return fmt.Errorf("pdf for %s: %w", h.SerialNo, r.err)
		}
		if r.url == "" {
			return nil
		}

		return s.store.UpdateQuotationItem(ctx, h.SerialNo, last.ItemNo, row(h, last.Item, last.ItemNo, imageURL, r.url))
	})
}

// closeLater dismisses the composer after the cosmetic delay and notifies the caller.
func (s *Service) closeLater(tr *Tracker, opts Options) {
	s.bg.After(s.cfg.CloseDelay, "quotation.close", func(ctx context.Context) error {
		tr.Set(PhaseClosed)
		if opts.OnSuccess != nil {
			return opts.OnSuccess(ctx)
		}
		return nil
	})
}
