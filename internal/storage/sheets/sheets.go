package sheets

import (
	"context"
	"fmt"
	"strings"

	"elem-admin/internal/config"
	"elem-admin/internal/storage"
)

// Storage exposes the sheets the service uses as typed records. It is the only place
// positional rows are built or read.
type Storage struct {
	api       *Client
	inventory *Client
	cfg       config.Sheets
}

func New(cfg config.Sheets) *Storage {
	inventoryURL := cfg.InventoryAPIURL
	if inventoryURL == "" {
		inventoryURL = cfg.APIURL
	}
	return NewWithClients(
		NewClient(cfg.APIURL, cfg.Timeout),
		NewClient(inventoryURL, cfg.Timeout),
		cfg,
	)
}

func NewWithClients(api, inventory *Client, cfg config.Sheets) *Storage {
	return &Storage{api: api, inventory: inventory, cfg: cfg}
}

// dataRows drops the header row.
func dataRows(rows [][]any) [][]any {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

func (s *Storage) QuotationRows(ctx context.Context) ([]storage.QuotationRow, error) {
	const op = "storage.sheets.QuotationRows"

	rows, err := s.api.GetData(ctx, s.cfg.Quotations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := dataRows(rows)
	out := make([]storage.QuotationRow, 0, len(data))
	for i, cells := range data {
		if len(cells) < 2 {
			continue
		}
		out = append(out, DecodeQuotationRow(cells, i+firstDataRow))
	}
	return out, nil
}

func (s *Storage) QuotationSerials(ctx context.Context) ([]string, error) {
	rows, err := s.QuotationRows(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	serials := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.SerialNo == "" {
			continue
		}
		if _, ok := seen[r.SerialNo]; ok {
			continue
		}
		seen[r.SerialNo] = struct{}{}
		serials = append(serials, r.SerialNo)
	}
	return serials, nil
}

// Quotation re-reads the sheet and rebuilds one quotation.
func (s *Storage) Quotation(ctx context.Context, serialNo string) (*storage.Quotation, error) {
	const op = "storage.sheets.Quotation"

	rows, err := s.QuotationRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var matched []storage.QuotationRow
	for _, r := range rows {
		if strings.EqualFold(r.SerialNo, serialNo) {
			matched = append(matched, r)
		}
	}

	groups := storage.GroupQuotations(matched)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%s: quotation %s: %w", op, serialNo, storage.ErrNotFound)
	}
	return groups[0], nil
}

func (s *Storage) InsertQuotationRows(ctx context.Context, rows []storage.QuotationRow) error {
	encoded := make([][]any, 0, len(rows))
	for _, r := range rows {
		encoded = append(encoded, EncodeQuotationRow(r))
	}
	return s.api.InsertBatch(ctx, s.cfg.Quotations, encoded)
}

func (s *Storage) UpdateQuotationItem(ctx context.Context, serialNo string, itemNo int, row storage.QuotationRow) error {
	return s.api.UpdateBySerialAndItemNo(ctx, s.cfg.Quotations, serialNo, itemNo, EncodeQuotationRow(row))
}

func (s *Storage) DeleteQuotationItem(ctx context.Context, serialNo string, itemNo int) error {
	return s.api.DeleteBySerialAndItemNo(ctx, s.cfg.Quotations, serialNo, itemNo)
}

func (s *Storage) RenumberQuotationItems(ctx context.Context, serialNo string, mappings []storage.ItemNoMapping) error {
	return s.api.UpdateItemNosForSerial(ctx, s.cfg.Quotations, serialNo, mappings)
}

func (s *Storage) UploadImage(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	return s.api.UploadFile(ctx, File{FolderID: s.cfg.ImageFolderID, Name: name, MimeType: mimeType, Data: data})
}

func (s *Storage) UploadPDF(ctx context.Context, name string, data []byte) (string, error) {
	return s.api.UploadFile(ctx, File{FolderID: s.cfg.PDFFolderID, Name: name, MimeType: "application/pdf", Data: data})
}

func (s *Storage) Customers(ctx context.Context) ([]storage.Customer, error) {
	const op = "storage.sheets.Customers"

	rows, err := s.api.GetData(ctx, s.cfg.Customers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := dataRows(rows)
	out := make([]storage.Customer, 0, len(data))
	for i, cells := range data {
		out = append(out, DecodeCustomerRow(cells, i+firstDataRow))
	}
	return out, nil
}

func (s *Storage) InsertCustomer(ctx context.Context, c storage.Customer) error {
	return s.api.Insert(ctx, s.cfg.Customers, EncodeCustomerRow(c))
}

func (s *Storage) UpdateCustomer(ctx context.Context, c storage.Customer) error {
	return s.api.Update(ctx, s.cfg.Customers, c.RowIndex, EncodeCustomerRow(c))
}

func (s *Storage) DeleteCustomer(ctx context.Context, rowIndex int) error {
	return s.api.Delete(ctx, s.cfg.Customers, rowIndex)
}

func (s *Storage) Users(ctx context.Context) ([]storage.User, error) {
	const op = "storage.sheets.Users"

	rows, err := s.api.GetData(ctx, s.cfg.Login)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := dataRows(rows)
	out := make([]storage.User, 0, len(data))
	for i, cells := range data {
		u := DecodeUserRow(cells, i+firstDataRow)
		if u.SerialNo == "" {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Storage) InsertUser(ctx context.Context, u storage.User) error {
	return s.api.Insert(ctx, s.cfg.Login, EncodeUserRow(u))
}

func (s *Storage) UpdateUser(ctx context.Context, u storage.User) error {
	return s.api.Update(ctx, s.cfg.Login, u.RowIndex, EncodeUserRow(u))
}

// CatalogEntries reads the inventory sheet from the inventory deployment.
func (s *Storage) CatalogEntries(ctx context.Context) ([]storage.CatalogEntry, error) {
	const op = "storage.sheets.CatalogEntries"

	rows, err := s.inventory.GetData(ctx, s.cfg.Inventory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(rows) > 0 && isInventoryHeader(rows[0]) {
		rows = rows[1:]
	}

	out := make([]storage.CatalogEntry, 0, len(rows))
	for _, cells := range rows {
		out = append(out, DecodeCatalogRow(cells))
	}
	return out, nil
}
