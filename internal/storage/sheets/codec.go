package sheets

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"elem-admin/internal/storage"
)

// Column positions of the quotations sheet (A..AA). The sheet has no schema; these
// positions are the contract.
const (
	colTimestamp = iota
	colSerialNo
	colEmployeeCode
	colCustomerID
	colCustomerName
	colPhone
	colEmail
	colTitle
	colImage
	colQty
	colPrice
	colDiscount
	colSubtotal
	colArchitectCode
	colArchitectName
	colArchitectNumber
	colPDFLink
	colItemNo
	colSerialNumber
	colModelNo
	colSize
	colColor
	colSpecification
	colRemarks
	colAddress
	colExpectedDelivery
	colMake

	quotationColumns
)

// firstDataRow is the sheet row of data[1]; row 1 holds the header.
const firstDataRow = 2

func EncodeQuotationRow(r storage.QuotationRow) []any {
	row := make([]any, quotationColumns)
	row[colTimestamp] = r.Timestamp
	row[colSerialNo] = r.SerialNo
	row[colEmployeeCode] = r.EmployeeCode
	row[colCustomerID] = r.CustomerID
	row[colCustomerName] = r.CustomerName
	row[colPhone] = r.Phone
	row[colEmail] = r.Email
	row[colTitle] = r.Title
	row[colImage] = r.ImageURL
	row[colQty] = r.Qty
	row[colPrice] = r.Price
	row[colDiscount] = r.Discount
	row[colSubtotal] = FormatMoney(r.Subtotal)
	row[colArchitectCode] = r.ArchitectCode
	row[colArchitectName] = r.ArchitectName
	row[colArchitectNumber] = r.ArchitectNumber
	row[colPDFLink] = r.PDFLink
	row[colItemNo] = r.ItemNo
	row[colSerialNumber] = r.SerialNumber
	row[colModelNo] = r.ModelNo
	row[colSize] = r.Size
	row[colColor] = r.Color
	row[colSpecification] = r.Specification
	row[colRemarks] = r.Remarks
	row[colAddress] = r.Address
	row[colExpectedDelivery] = r.ExpectedDeliveryDate
	row[colMake] = r.Make
	return row
}

// DecodeQuotationRow reads a row that may be shorter than the full layout.
func DecodeQuotationRow(cells []any, rowIndex int) storage.QuotationRow {
	c := cellReader(cells)
	return storage.QuotationRow{
		RowIndex:             rowIndex,
		Timestamp:            c.str(colTimestamp),
		SerialNo:             c.str(colSerialNo),
		EmployeeCode:         c.str(colEmployeeCode),
		CustomerID:           c.str(colCustomerID),
		CustomerName:         c.str(colCustomerName),
		Phone:                c.str(colPhone),
		Email:                c.str(colEmail),
		Title:                c.str(colTitle),
		ImageURL:             c.str(colImage),
		Qty:                  c.float(colQty, 1),
		Price:                c.float(colPrice, 0),
		Discount:             c.float(colDiscount, 0),
		Subtotal:             c.float(colSubtotal, 0),
		ArchitectCode:        c.str(colArchitectCode),
		ArchitectName:        c.str(colArchitectName),
		ArchitectNumber:      c.str(colArchitectNumber),
		PDFLink:              c.str(colPDFLink),
		ItemNo:               c.integer(colItemNo),
		SerialNumber:         c.str(colSerialNumber),
		ModelNo:              c.str(colModelNo),
		Size:                 c.str(colSize),
		Color:                c.str(colColor),
		Specification:        c.str(colSpecification),
		Remarks:              c.str(colRemarks),
		Address:              c.str(colAddress),
		ExpectedDeliveryDate: c.str(colExpectedDelivery),
		Make:                 c.str(colMake),
	}
}

// Customers sheet: timestamp, serial no, customer id, name, phone, email, address.
func EncodeCustomerRow(cu storage.Customer) []any {
	return []any{cu.Timestamp, cu.SerialNo, cu.CustomerID, cu.Name, cu.Phone, cu.Email, cu.Address}
}

func DecodeCustomerRow(cells []any, rowIndex int) storage.Customer {
	c := cellReader(cells)
	return storage.Customer{
		RowIndex:   rowIndex,
		Timestamp:  c.str(0),
		SerialNo:   c.str(1),
		CustomerID: c.str(2),
		Name:       c.str(3),
		Phone:      c.str(4),
		Email:      c.str(5),
		Address:    c.str(6),
	}
}

// Login sheet: serial no, employee code, user name, user id, password, role, page access, status.
func EncodeUserRow(u storage.User) []any {
	return []any{u.SerialNo, u.EmployeeCode, u.Name, u.UserID, u.Password, u.Role, strings.Join(u.PageAccess, ", "), u.Status}
}

func DecodeUserRow(cells []any, rowIndex int) storage.User {
	c := cellReader(cells)

	var pages []string
	for _, p := range strings.Split(c.str(6), ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}

	u := storage.User{
		RowIndex:     rowIndex,
		SerialNo:     c.str(0),
		EmployeeCode: c.str(1),
		Name:         c.str(2),
		UserID:       c.str(3),
		Password:     c.str(4),
		Role:         c.str(5),
		PageAccess:   pages,
		Status:       c.str(7),
	}
	if u.Role == "" {
		u.Role = storage.RoleUser
	}
	if u.Status == "" {
		u.Status = storage.StatusActivated
	}
	return u
}

// Inventory sheet, read only.
func DecodeCatalogRow(cells []any) storage.CatalogEntry {
	c := cellReader(cells)
	return storage.CatalogEntry{
		SerialNumber:  c.str(1),
		Image:         c.str(2),
		Title:         c.str(3),
		Make:          c.str(5),
		ModelNo:       c.str(6),
		Size:          c.str(7),
		Color:         c.str(8),
		Price:         c.float(9, 0),
		Specification: c.str(10),
		AvailableQty:  c.float(14, 0),
	}
}

func isInventoryHeader(cells []any) bool {
	c := cellReader(cells)
	return c.str(0) == "Timestamp" || c.str(1) == "Serial Number"
}

// FormatMoney rounds to two decimals; only used where a value leaves the service.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

type cellReader []any

func (c cellReader) str(i int) string {
	if i >= len(c) || c[i] == nil {
		return ""
	}
	switch v := c[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (c cellReader) float(i int, def float64) float64 {
	if i >= len(c) {
		return def
	}
	f, ok := c[i].(float64)
	if !ok {
		parsed, err := strconv.ParseFloat(c.str(i), 64)
		if err != nil {
			return def
		}
		f = parsed
	}
	if math.IsNaN(f) || f == 0 {
		return def
	}
	return f
}

func (c cellReader) integer(i int) int {
	return int(c.float(i, 0))
}
