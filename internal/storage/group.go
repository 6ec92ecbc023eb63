package storage

import (
	"sort"
	"strings"
	"time"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
	"1/2/2006 15:04:05",
}

// ParseTimestamp understands the formats found in column A. Unknown values give the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// GroupQuotations rebuilds quotations from flat rows sharing a serial number.
// Items keep sheet order, quotations are ordered newest first.
func GroupQuotations(rows []QuotationRow) []*Quotation {
	groups := make(map[string]*Quotation)
	var order []*Quotation

	for _, row := range rows {
		serial := strings.TrimSpace(row.SerialNo)
		if serial == "" {
			continue
		}

		q, ok := groups[serial]
		if !ok {
			q = &Quotation{
				SerialNo:     serial,
				Date:         row.Timestamp,
				EmployeeCode: row.EmployeeCode,
				Customer: CustomerRef{
					ID:    row.CustomerID,
					Name:  row.CustomerName,
					Phone: row.Phone,
					Email: row.Email,
				},
				Architect: ArchitectRef{
					Code:   row.ArchitectCode,
					Name:   row.ArchitectName,
					Number: row.ArchitectNumber,
				},
				ExpectedDeliveryDate: row.ExpectedDeliveryDate,
				State:                StateConfirmed,
			}
			groups[serial] = q
			order = append(order, q)
		}

		if row.Address != "" {
			q.Customer.Address = row.Address
		}
		if row.PDFLink != "" {
			q.PDFLink = row.PDFLink
		}

		q.Items = append(q.Items, Item{
			RowIndex:      row.RowIndex,
			ItemNo:        row.ItemNo,
			Title:         row.Title,
			Image:         ImageRef{URL: row.ImageURL},
			Qty:           row.Qty,
			Price:         row.Price,
			Discount:      row.Discount,
			SerialNumber:  row.SerialNumber,
			ModelNo:       row.ModelNo,
			Make:          row.Make,
			Size:          row.Size,
			Color:         row.Color,
			Specification: row.Specification,
			Remarks:       row.Remarks,
		})
	}

	sort.SliceStable(order, func(i, j int) bool {
		return ParseTimestamp(order[i].Date).After(ParseTimestamp(order[j].Date))
	})

	return order
}

// VisibleTo drops rows owned by other employees unless the user is an admin.
func VisibleTo(user SessionUser, rows []QuotationRow) []QuotationRow {
	code := strings.ToLower(strings.TrimSpace(user.OwnerCode()))
	if user.IsAdmin() || code == "" {
		return rows
	}

	visible := make([]QuotationRow, 0, len(rows))
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row.EmployeeCode)) == code {
			visible = append(visible, row)
		}
	}
	return visible
}

func QuotationTotal(q *Quotation) float64 {
	return Total(q.Items)
}

// MatchQuotation is the list search: serial or customer name (case-insensitive) or phone.
func MatchQuotation(q *Quotation, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	return strings.Contains(strings.ToLower(q.SerialNo), lower) ||
		strings.Contains(strings.ToLower(q.Customer.Name), lower) ||
		strings.Contains(q.Customer.Phone, term)
}
