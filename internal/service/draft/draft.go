// Package draft holds a quotation while it is being composed or edited. Nothing here does
// I/O; item numbers are only assigned when the draft is saved.
package draft

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"elem-admin/internal/storage"
)

const MaxItems = 100

var (
	ErrEmptyTitle      = errors.New("please enter item title")
	ErrInvalidPrice    = errors.New("please enter valid price")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrTooManyItems    = errors.New("maximum 100 items allowed")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrIndexOutOfRange = errors.New("item index out of range")
)

type Header struct {
	SerialNo             string
	Date                 string
	EmployeeCode         string
	Customer             storage.CustomerRef
	Architect            storage.ArchitectRef
	ExpectedDeliveryDate string
	PDFLink              string
}

// Deletion is a persisted item removed from the draft that still has a row in the sheet.
type Deletion struct {
	SerialNo string `json:"serial_no"`
	ItemNo   int    `json:"item_no"`
	RowIndex int    `json:"row_index"`
}

type Draft struct {
	Header Header

	items     []storage.Item
	deletions []Deletion
}

func New(h Header) *Draft {
	return &Draft{Header: h}
}

// FromQuotation rehydrates a persisted quotation for editing; items keep their row index
// and item number.
func FromQuotation(q *storage.Quotation) *Draft {
	d := &Draft{
		Header: Header{
			SerialNo:             q.SerialNo,
			Date:                 q.Date,
			EmployeeCode:         q.EmployeeCode,
			Customer:             q.Customer,
			Architect:            q.Architect,
			ExpectedDeliveryDate: q.ExpectedDeliveryDate,
			PDFLink:              q.PDFLink,
		},
		items: make([]storage.Item, 0, len(q.Items)),
	}
	for _, it := range q.Items {
		if it.ID == "" {
			it.ID = tempID()
		}
		d.items = append(d.items, it)
	}
	return d
}

// AddItem validates the candidate and appends it with a fresh temporary id.
func (d *Draft) AddItem(candidate storage.Item) (storage.Item, error) {
	const op = "service.draft.AddItem"

	it := normalize(candidate)
	if it.Title == "" {
		return storage.Item{}, fmt.Errorf("%s: %w", op, ErrEmptyTitle)
	}
	if it.Price <= 0 {
		return storage.Item{}, fmt.Errorf("%s: %w", op, ErrInvalidPrice)
	}
	if len(d.items) >= MaxItems {
		return storage.Item{}, fmt.Errorf("%s: %w", op, ErrTooManyItems)
	}
	if err := checkDiscount(it.Discount); err != nil {
		return storage.Item{}, fmt.Errorf("%s: %w", op, err)
	}

	it.ID = tempID()
	it.ItemNo = 0
	it.RowIndex = 0
	d.items = append(d.items, it)

	return it, nil
}

// UpdateItem replaces the item at index. Identity (temp id, item number, row index) is
// carried over from the item being replaced.
func (d *Draft) UpdateItem(index int, next storage.Item) error {
	const op = "service.draft.UpdateItem"

	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("%s: %d: %w", op, index, ErrIndexOutOfRange)
	}

	it := normalize(next)
	if it.Title == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyTitle)
	}
	if it.Price < 0 {
		return fmt.Errorf("%s: %w", op, ErrNegativePrice)
	}
	if err := checkDiscount(it.Discount); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	prev := d.items[index]
	it.ID = prev.ID
	it.ItemNo = prev.ItemNo
	it.RowIndex = prev.RowIndex

	items := make([]storage.Item, len(d.items))
	copy(items, d.items)
	items[index] = it
	d.items = items

	return nil
}

// RemoveItem drops the item at index and, when it is already in the sheet, queues its
// remote delete.
func (d *Draft) RemoveItem(index int) (storage.Item, error) {
	const op = "service.draft.RemoveItem"

	if index < 0 || index >= len(d.items) {
		return storage.Item{}, fmt.Errorf("%s: %d: %w", op, index, ErrIndexOutOfRange)
	}

	removed := d.items[index]
	items := make([]storage.Item, 0, len(d.items)-1)
	items = append(items, d.items[:index]...)
	items = append(items, d.items[index+1:]...)
	d.items = items

	if removed.Persisted() && removed.ItemNo > 0 {
		d.deletions = append(d.deletions, Deletion{
			SerialNo: d.Header.SerialNo,
			ItemNo:   removed.ItemNo,
			RowIndex: removed.RowIndex,
		})
	}

	return removed, nil
}

func (d *Draft) Items() []storage.Item {
	items := make([]storage.Item, len(d.items))
	copy(items, d.items)
	return items
}

func (d *Draft) Len() int {
	return len(d.items)
}

func (d *Draft) Total() float64 {
	return storage.Total(d.items)
}

func (d *Draft) PendingDeletions() []Deletion {
	out := make([]Deletion, len(d.deletions))
	copy(out, d.deletions)
	return out
}

// Quotation is the optimistic view of the draft before the sheet confirms it.
func (d *Draft) Quotation() *storage.Quotation {
	return &storage.Quotation{
		SerialNo:             d.Header.SerialNo,
		Date:                 d.Header.Date,
		EmployeeCode:         d.Header.EmployeeCode,
		Customer:             d.Header.Customer,
		Architect:            d.Header.Architect,
		ExpectedDeliveryDate: d.Header.ExpectedDeliveryDate,
		PDFLink:              d.Header.PDFLink,
		Items:                d.Items(),
		State:                storage.StatePending,
	}
}

// Merge applies an edited item list to a persisted quotation. Persisted items absent from
// edited are removed, matched ones (by item number) are updated and take their order from
// edited, and the rest of edited is appended in request order.
func Merge(persisted *storage.Quotation, header Header, edited []storage.Item) (*Draft, error) {
	d := FromQuotation(persisted)
	header.SerialNo = persisted.SerialNo
	if header.Date == "" {
		header.Date = persisted.Date
	}
	if header.EmployeeCode == "" {
		header.EmployeeCode = persisted.EmployeeCode
	}
	if header.PDFLink == "" {
		header.PDFLink = persisted.PDFLink
	}
	if header.Customer == (storage.CustomerRef{}) {
		header.Customer = persisted.Customer
	}
	if header.Architect == (storage.ArchitectRef{}) {
		header.Architect = persisted.Architect
	}
	if header.ExpectedDeliveryDate == "" {
		header.ExpectedDeliveryDate = persisted.ExpectedDeliveryDate
	}
	d.Header = header

	known := make(map[int]bool, len(persisted.Items))
	for _, it := range persisted.Items {
		if it.ItemNo > 0 {
			known[it.ItemNo] = true
		}
	}

	byItemNo := make(map[int]storage.Item, len(edited))
	position := make(map[int]int, len(edited))
	var added []storage.Item
	for _, it := range edited {
		if it.ItemNo > 0 && known[it.ItemNo] {
			if _, dup := byItemNo[it.ItemNo]; !dup {
				byItemNo[it.ItemNo] = it
				position[it.ItemNo] = len(position)
				continue
			}
		}
		added = append(added, it)
	}

	for i := d.Len() - 1; i >= 0; i-- {
		if _, keep := byItemNo[d.items[i].ItemNo]; !keep {
			if _, err := d.RemoveItem(i); err != nil {
				return nil, err
			}
		}
	}

	for i, it := range d.items {
		if err := d.UpdateItem(i, byItemNo[it.ItemNo]); err != nil {
			return nil, fmt.Errorf("item %d: %w", it.ItemNo, err)
		}
	}

	// kept items follow the order of the edited list
	slices.SortStableFunc(d.items, func(a, b storage.Item) int {
		return position[a.ItemNo] - position[b.ItemNo]
	})

	for _, it := range added {
		if _, err := d.AddItem(it); err != nil {
			return nil, fmt.Errorf("new item %q: %w", it.Title, err)
		}
	}

	return d, nil
}

func normalize(it storage.Item) storage.Item {
	it.Title = strings.TrimSpace(it.Title)
	if it.Qty <= 0 {
		it.Qty = 1
	}
	return it
}

func checkDiscount(v float64) error {
	if v < 0 || v > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

func tempID() string {
	return "tmp-" + uuid.NewString()
}
