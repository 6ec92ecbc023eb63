// Package quotepdf renders a quotation as an A4 PDF.
package quotepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"elem-admin/internal/service/catalog"
	"elem-admin/internal/storage"
	"elem-admin/internal/storage/sheets"
)

type Renderer interface {
	Render(ctx context.Context, q *storage.Quotation) ([]byte, error)
}

// Letterhead is the seller block printed on every quotation.
type Letterhead struct {
	Brand   string
	Tagline string
	Phone   string
	Address []string
	Terms   []string
}

var DefaultLetterhead = Letterhead{
	Brand:   "ELEM",
	Tagline: "CRAFTED FOR ELEGANCE",
	Phone:   "7599999650",
	Address: []string{
		"Fruit Market, Ahead Lalpur, beside Bharat Petroleum,",
		"Pachpedi Naka, Raipur, Chhattisgarh 492015",
	},
	Terms: []string{
		"Transportation & packing charges will be additional as per actuals",
		"Once order placed will not be cancelled",
		"Goods will not be returned once delivered",
	},
}

const imageTimeout = 5 * time.Second

type PDF struct {
	log        *slog.Logger
	letterhead Letterhead
	http       *http.Client
	money      *message.Printer
}

func New(log *slog.Logger, lh Letterhead) *PDF {
	return &PDF{
		log:        log,
		letterhead: lh,
		http:       &http.Client{Timeout: imageTimeout},
		money:      message.NewPrinter(language.MustParse("en-IN")),
	}
}

// FileName is the upload name of a quotation PDF.
func FileName(q *storage.Quotation) string {
	name := strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, strings.TrimSpace(q.Customer.Name))
	if name == "" {
		return fmt.Sprintf("Quotation_%s.pdf", q.SerialNo)
	}
	return fmt.Sprintf("Quotation_%s_%s.pdf", q.SerialNo, name)
}

// Money formats an amount with Indian digit grouping and two decimals.
func (p *PDF) Money(v float64) string {
	return "Rs. " + p.money.Sprintf("%.2f", v)
}

func (p *PDF) Render(ctx context.Context, q *storage.Quotation) ([]byte, error) {
	const op = "service.quotepdf.Render"

	if q == nil {
		return nil, fmt.Errorf("%s: nil quotation", op)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Quotation "+q.SerialNo, false)
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, "Thank you!", "", 1, "C", false, 0, "")
	})
	pdf.AddPage()

	p.header(pdf, tr, q)
	p.parties(pdf, tr, q)
	p.items(ctx, pdf, tr, q)
	p.terms(pdf, tr)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: output: %w", op, err)
	}
	return buf.Bytes(), nil
}

func (p *PDF) header(pdf *gofpdf.Fpdf, tr func(string) string, q *storage.Quotation) {
	pdf.SetFillColor(5, 46, 37)
	pdf.Rect(0, 0, 210, 28, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(12, 7)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(100, 9, tr(p.letterhead.Brand), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 9, "QUOTATION", "", 1, "R", false, 0, "")

	pdf.SetX(12)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(100, 5, tr(p.letterhead.Tagline), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("No. %s   Date: %s", q.SerialNo, displayDate(q.Date))), "", 1, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(34)
}

func (p *PDF) parties(pdf *gofpdf.Fpdf, tr func(string) string, q *storage.Quotation) {
	top := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(95, 6, "BILL TO", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{
		q.Customer.Name,
		labelled("Phone", q.Customer.Phone),
		labelled("Email", q.Customer.Email),
		labelled("Address", q.Customer.Address),
		labelled("Architect", strings.TrimSpace(q.Architect.Name+" "+q.Architect.Number)),
		labelled("Expected delivery", q.ExpectedDeliveryDate),
	} {
		if line == "" {
			continue
		}
		pdf.MultiCell(95, 4.5, tr(line), "", "L", false)
	}
	left := pdf.GetY()

	pdf.SetXY(115, top)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(83, 6, tr("FROM: "+p.letterhead.Brand), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(115)
	pdf.CellFormat(83, 4.5, tr("Mobile No: "+p.letterhead.Phone), "", 2, "L", false, 0, "")
	for _, line := range p.letterhead.Address {
		pdf.SetX(115)
		pdf.CellFormat(83, 4.5, tr(line), "", 2, "L", false, 0, "")
	}

	pdf.SetY(max(left, pdf.GetY()) + 6)
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"", 22, "C"},
	{"Item", 76, "L"},
	{"Qty", 14, "C"},
	{"Price", 26, "R"},
	{"Disc.", 14, "C"},
	{"Amount", 26, "R"},
}

const rowHeight = 22.0

func (p *PDF) items(ctx context.Context, pdf *gofpdf.Fpdf, tr func(string) string, q *storage.Quotation) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(5, 46, 37)
	pdf.SetTextColor(255, 255, 255)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	for i, it := range q.Items {
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		no := i + 1
		if it.ItemNo > 0 {
			no = it.ItemNo
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(columns[0].width, rowHeight, fmt.Sprint(no), "B", 0, "C", false, 0, "")

		imgX := pdf.GetX()
		pdf.CellFormat(columns[1].width, rowHeight, "", "B", 0, "C", false, 0, "")
		if name, ok := p.image(ctx, pdf, it, i); ok {
			pdf.ImageOptions(name, imgX+2, y+2, columns[1].width-4, rowHeight-4, false,
				gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		} else {
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetXY(imgX, y)
			pdf.CellFormat(columns[1].width, rowHeight, "NO IMG", "", 0, "C", false, 0, "")
		}

		textX := imgX + columns[1].width
		pdf.SetXY(textX, y+1.5)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(columns[2].width, 4.5, tr(trim(it.Title, 48)), "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(columns[2].width, 3.8, tr(trim(details(it), 70)), "", 2, "L", false, 0, "")
		if it.Specification != "" {
			pdf.CellFormat(columns[2].width, 3.8, tr(trim(it.Specification, 70)), "", 2, "L", false, 0, "")
		}
		if it.Remarks != "" {
			pdf.CellFormat(columns[2].width, 3.8, tr(trim("Remarks: "+it.Remarks, 70)), "", 2, "L", false, 0, "")
		}

		pdf.SetXY(textX, y)
		pdf.CellFormat(columns[2].width, rowHeight, "", "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(columns[3].width, rowHeight, trimFloat(it.Qty), "B", 0, "C", false, 0, "")
		pdf.CellFormat(columns[4].width, rowHeight, p.Money(it.Price), "B", 0, "R", false, 0, "")
		pdf.CellFormat(columns[5].width, rowHeight, trimFloat(it.Discount)+"%", "B", 0, "C", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(columns[6].width, rowHeight, p.Money(storage.LineTotal(it)), "B", 1, "R", false, 0, "")
		pdf.SetX(x)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(134, 8, "", "", 0, "L", false, 0, "")
	pdf.SetFillColor(240, 235, 225)
	pdf.CellFormat(52, 8, "Total: "+p.Money(storage.Total(q.Items)), "", 1, "R", true, 0, "")
}

func (p *PDF) terms(pdf *gofpdf.Fpdf, tr func(string) string) {
	if len(p.letterhead.Terms) == 0 {
		return
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Terms & Conditions", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, t := range p.letterhead.Terms {
		pdf.MultiCell(0, 4.5, tr("- "+t), "", "L", false)
	}
}

// image registers the item picture as a JPEG. Anything that cannot be fetched or decoded
// within the timeout is left out.
func (p *PDF) image(ctx context.Context, pdf *gofpdf.Fpdf, it storage.Item, idx int) (string, bool) {
	const op = "service.quotepdf.image"

	data, err := p.imageBytes(ctx, it)
	if err != nil {
		p.log.With(
			slog.String("op", op),
			slog.String("item", it.Title),
			slog.String("error", err.Error()),
		).Debug("item image skipped")
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", false
	}

	name := fmt.Sprintf("item-%d", idx)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "JPG"}, &buf)
	if pdf.Ok() {
		return name, true
	}
	pdf.ClearError()
	return "", false
}

func (p *PDF) imageBytes(ctx context.Context, it storage.Item) ([]byte, error) {
	if it.Image.Pending != nil {
		return it.Image.Pending.Data, nil
	}

	src := it.Image.URL
	if src == "" {
		src = it.Image.Preview
	}
	if src == "" {
		return nil, nil
	}
	if strings.HasPrefix(src, "data:") {
		_, data, err := sheets.ParseDataURI(src)
		return data, err
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return nil, errors.New("unsupported image source")
	}

	ctx, cancel := context.WithTimeout(ctx, imageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalog.DisplayableImageURL(src), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func details(it storage.Item) string {
	var parts []string
	for _, kv := range [][2]string{
		{"S.No", it.SerialNumber},
		{"Model", it.ModelNo},
		{"Make", it.Make},
		{"Size", it.Size},
		{"Color", it.Color},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+": "+kv[1])
		}
	}
	return strings.Join(parts, " | ")
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func displayDate(ts string) string {
	t := storage.ParseTimestamp(ts)
	if t.IsZero() {
		return ts
	}
	return t.Format("02/01/2006")
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
