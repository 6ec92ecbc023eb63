package generate_excel

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"elem-admin/internal/storage"
)

const sheet = "Quotations"

type GenerateExcelStorage interface {
	QuotationRows(ctx context.Context) ([]storage.QuotationRow, error)
}

// Filter narrows the export. Zero dates leave that side open.
type Filter struct {
	From time.Time
	To   time.Time
	Term string
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var headers = []string{
	"Serial No", "Date", "Employee Code", "Customer", "Phone", "Item No", "Product",
	"Model No", "Qty", "Price", "Discount %", "Amount",
}

// GenerateExcel writes one row per item of every quotation user can see, followed by a
// grand total.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, user storage.SessionUser, filter Filter) ([]byte, error) {
	rows, err := g.storage.QuotationRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}

	var quotations []*storage.Quotation
	for _, q := range storage.GroupQuotations(storage.VisibleTo(user, rows)) {
		if filter.match(q) {
			quotations = append(quotations, q)
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	rowNum := 2
	total := decimal.Zero
	for _, q := range quotations {
		for _, it := range q.Items {
			amount := decimal.NewFromFloat(storage.LineTotal(it)).Round(2)
			total = total.Add(amount)

			f.SetCellValue(sheet, cellName(1, rowNum), q.SerialNo)
			f.SetCellValue(sheet, cellName(2, rowNum), q.Date)
			f.SetCellValue(sheet, cellName(3, rowNum), q.EmployeeCode)
			f.SetCellValue(sheet, cellName(4, rowNum), q.Customer.Name)
			f.SetCellValue(sheet, cellName(5, rowNum), q.Customer.Phone)
			f.SetCellValue(sheet, cellName(6, rowNum), it.ItemNo)
			f.SetCellValue(sheet, cellName(7, rowNum), it.Title)
			f.SetCellValue(sheet, cellName(8, rowNum), it.ModelNo)
			f.SetCellValue(sheet, cellName(9, rowNum), it.Qty)
			f.SetCellValue(sheet, cellName(10, rowNum), it.Price)
			f.SetCellValue(sheet, cellName(11, rowNum), it.Discount)
			f.SetCellValue(sheet, cellName(12, rowNum), amount.InexactFloat64())
			rowNum++
		}
	}

	f.SetCellValue(sheet, cellName(11, rowNum), "Total")
	f.SetCellValue(sheet, cellName(12, rowNum), total.InexactFloat64())
	f.SetCellStyle(sheet, cellName(10, 2), cellName(10, rowNum), moneyStyle)
	f.SetCellStyle(sheet, cellName(12, 2), cellName(12, rowNum), moneyStyle)
	f.SetCellStyle(sheet, cellName(11, rowNum), cellName(11, rowNum), headerStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})
	f.SetColWidth(sheet, "A", "E", 15)
	f.SetColWidth(sheet, "G", "G", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (f Filter) match(q *storage.Quotation) bool {
	if !storage.MatchQuotation(q, f.Term) {
		return false
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}

	date := storage.ParseTimestamp(q.Date)
	if date.IsZero() {
		return false
	}
	if !f.From.IsZero() && date.Before(f.From) {
		return false
	}
	// To is inclusive of the whole day.
	if !f.To.IsZero() && !date.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
