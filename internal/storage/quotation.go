package storage

// State tags an aggregate as only known locally or read back from the sheet.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
)

type CustomerRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ArchitectRef struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

type Quotation struct {
	SerialNo             string       `json:"serial_no"`
	Date                 string       `json:"date"`
	EmployeeCode         string       `json:"employee_code"`
	Customer             CustomerRef  `json:"customer"`
	Architect            ArchitectRef `json:"architect"`
	ExpectedDeliveryDate string       `json:"expected_delivery_date"`
	PDFLink              string       `json:"pdf_link"`
	Items                []Item       `json:"items"`
	State                State        `json:"state"`
}

// PendingFile is an image picked on the client that is not uploaded yet.
type PendingFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// ImageRef holds at most one of a remote URL or a pending file; Preview is what the
// composer shows (a data URI or a catalog thumbnail).
type ImageRef struct {
	URL     string       `json:"url,omitempty"`
	Preview string       `json:"preview,omitempty"`
	Pending *PendingFile `json:"pending,omitempty"`
}

type Item struct {
	ID            string   `json:"id"`
	RowIndex      int      `json:"row_index,omitempty"`
	ItemNo        int      `json:"item_no,omitempty"`
	Title         string   `json:"title"`
	Image         ImageRef `json:"image"`
	Qty           float64  `json:"qty"`
	Price         float64  `json:"price"`
	Discount      float64  `json:"discount"`
	SerialNumber  string   `json:"serial_number"`
	ModelNo       string   `json:"model_no"`
	Make          string   `json:"make"`
	Size          string   `json:"size"`
	Color         string   `json:"color"`
	Specification string   `json:"specification"`
	Remarks       string   `json:"remarks"`
}

// Persisted reports whether the item already has a row in the sheet.
func (it Item) Persisted() bool {
	return it.ItemNo > 0 || it.RowIndex > 0
}

func LineTotal(it Item) float64 {
	return it.Qty * it.Price * (1 - it.Discount/100)
}

func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += LineTotal(it)
	}
	return total
}

// QuotationRow is one sheet row of the quotations sheet with named fields.
type QuotationRow struct {
	RowIndex             int
	Timestamp            string
	SerialNo             string
	EmployeeCode         string
	CustomerID           string
	CustomerName         string
	Phone                string
	Email                string
	Title                string
	ImageURL             string
	Qty                  float64
	Price                float64
	Discount             float64
	Subtotal             float64
	ArchitectCode        string
	ArchitectName        string
	ArchitectNumber      string
	PDFLink              string
	ItemNo               int
	SerialNumber         string
	ModelNo              string
	Size                 string
	Color                string
	Specification        string
	Remarks              string
	Address              string
	ExpectedDeliveryDate string
	Make                 string
}

// ItemNoMapping moves a persisted item from one position to another within its quotation.
type ItemNoMapping struct {
	OldItemNo int `json:"oldItemNo"`
	NewItemNo int `json:"newItemNo"`
}
