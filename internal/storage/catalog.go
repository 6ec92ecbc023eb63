package storage

// CatalogEntry is one inventory row used to prefill a line item.
type CatalogEntry struct {
	SerialNumber  string  `json:"serial_number"`
	Image         string  `json:"image"`
	Title         string  `json:"title"`
	Make          string  `json:"make"`
	ModelNo       string  `json:"model_no"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	Price         float64 `json:"price"`
	Specification string  `json:"specification"`
	AvailableQty  float64 `json:"available_qty"`
}
