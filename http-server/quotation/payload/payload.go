// Package payload decodes the quotation body shared by the create and edit endpoints.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"elem-admin/internal/service/draft"
	"elem-admin/internal/service/quotation"
	"elem-admin/internal/storage"
	"elem-admin/internal/storage/sheets"
)

var ErrBadImage = errors.New("image is not a valid data URI")

type Request struct {
	EmployeeCode         string               `json:"employee_code"`
	Customer             storage.CustomerRef  `json:"customer"`
	Architect            storage.ArchitectRef `json:"architect"`
	ExpectedDeliveryDate string               `json:"expected_delivery_date"`
	Items                []Item               `json:"items"`
}

// Item carries the image as a URL or a data URI; data URIs become pending uploads.
type Item struct {
	ItemNo        int     `json:"item_no"`
	Title         string  `json:"title"`
	Image         string  `json:"image"`
	ImageName     string  `json:"image_name"`
	Qty           float64 `json:"qty"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	SerialNumber  string  `json:"serial_number"`
	ModelNo       string  `json:"model_no"`
	Make          string  `json:"make"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	Specification string  `json:"specification"`
	Remarks       string  `json:"remarks"`
}

func (r Request) Header() draft.Header {
	return draft.Header{
		EmployeeCode:         strings.TrimSpace(r.EmployeeCode),
		Customer:             r.Customer,
		Architect:            r.Architect,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
	}
}

func (r Request) StorageItems() ([]storage.Item, error) {
	out := make([]storage.Item, 0, len(r.Items))
	for i, it := range r.Items {
		item := storage.Item{
			ItemNo:        it.ItemNo,
			Title:         it.Title,
			Qty:           it.Qty,
			Price:         it.Price,
			Discount:      it.Discount,
			SerialNumber:  it.SerialNumber,
			ModelNo:       it.ModelNo,
			Make:          it.Make,
			Size:          it.Size,
			Color:         it.Color,
			Specification: it.Specification,
			Remarks:       it.Remarks,
		}

		img := strings.TrimSpace(it.Image)
		if strings.HasPrefix(img, "data:") {
			mimeType, data, err := sheets.ParseDataURI(img)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, ErrBadImage)
			}
			item.Image = storage.ImageRef{
				Preview: img,
				Pending: &storage.PendingFile{Name: it.ImageName, MimeType: mimeType, Data: data},
			}
		} else {
			item.Image = storage.ImageRef{URL: img}
		}

		out = append(out, item)
	}
	return out, nil
}

// Reason returns the message to show when err is the caller's fault.
func Reason(err error) (string, bool) {
	for _, target := range []error{
		ErrBadImage,
		quotation.ErrNoItems,
		quotation.ErrNoSerial,
		draft.ErrEmptyTitle,
		draft.ErrInvalidPrice,
		draft.ErrNegativePrice,
		draft.ErrTooManyItems,
		draft.ErrInvalidDiscount,
	} {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}
	return "", false
}
