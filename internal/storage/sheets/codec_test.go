package sheets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elem-admin/internal/storage"
)

// roundTrip pushes a row through JSON the way the spreadsheet API does, so numbers come
// back as float64.
func roundTrip(t *testing.T, row []any) []any {
	data, err := json.Marshal(row)
	require.NoError(t, err)
	var out []any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestQuotationRowCodec(t *testing.T) {
	in := storage.QuotationRow{
		Timestamp:            "2026-04-02 11:30:00",
		SerialNo:             "QT-012",
		EmployeeCode:         "EMP-3",
		CustomerID:           "CN-0004",
		CustomerName:         "Asha Verma",
		Phone:                "9876543210",
		Email:                "asha@example.com",
		Title:                "Sofa",
		ImageURL:             "https://img/sofa.png",
		Qty:                  2,
		Price:                500,
		Discount:             10,
		Subtotal:             900,
		ArchitectCode:        "AR-1",
		ArchitectName:        "Kiran",
		ArchitectNumber:      "9000000000",
		PDFLink:              "https://files/qt-012.pdf",
		ItemNo:               3,
		SerialNumber:         "INV-77",
		ModelNo:              "SF-2",
		Size:                 "3 seater",
		Color:                "Grey",
		Specification:        "Fabric",
		Remarks:              "Urgent",
		Address:              "Raipur",
		ExpectedDeliveryDate: "2026-05-01",
		Make:                 "Acme",
	}

	encoded := EncodeQuotationRow(in)
	require.Len(t, encoded, 27)
	assert.Equal(t, "900.00", encoded[colSubtotal])
	assert.Equal(t, "https://files/qt-012.pdf", encoded[16])
	assert.Equal(t, 3, encoded[17])
	assert.Equal(t, "Acme", encoded[26])

	out := DecodeQuotationRow(roundTrip(t, encoded), 7)
	in.RowIndex = 7
	assert.Equal(t, in, out)
}

func TestDecodeQuotationRow_ShortRowAndDefaults(t *testing.T) {
	out := DecodeQuotationRow([]any{"2026-01-01 00:00:00", "QT-001", "EMP-1", nil, "Ravi", 9876543210.0}, 2)

	assert.Equal(t, "QT-001", out.SerialNo)
	assert.Equal(t, "9876543210", out.Phone)
	assert.Equal(t, 1.0, out.Qty)
	assert.Zero(t, out.Price)
	assert.Zero(t, out.ItemNo)
	assert.Empty(t, out.Make)
}

func TestDecodeQuotationRow_StringNumbers(t *testing.T) {
	cells := make([]any, quotationColumns)
	cells[colSerialNo] = "QT-002"
	cells[colQty] = "0"
	cells[colPrice] = " 1250.5 "
	cells[colItemNo] = "4"

	out := DecodeQuotationRow(cells, 3)
	assert.Equal(t, 1.0, out.Qty)
	assert.Equal(t, 1250.5, out.Price)
	assert.Equal(t, 4, out.ItemNo)
}

func TestCustomerRowCodec(t *testing.T) {
	in := storage.Customer{
		Timestamp:  "2026-04-02 11:30:00",
		SerialNo:   "SN-004",
		CustomerID: "CN-0004",
		Name:       "Asha",
		Phone:      "98765",
		Email:      "asha@example.com",
		Address:    "Raipur",
	}

	out := DecodeCustomerRow(roundTrip(t, EncodeCustomerRow(in)), 5)
	in.RowIndex = 5
	assert.Equal(t, in, out)
}

func TestUserRowCodec(t *testing.T) {
	in := storage.User{
		SerialNo:     "SN-002",
		EmployeeCode: "EMP-2",
		Name:         "Ravi",
		UserID:       "ravi",
		Password:     "secret",
		Role:         storage.RoleUser,
		PageAccess:   []string{"Dashboard", "Quotations"},
		Status:       storage.StatusActivated,
	}

	encoded := EncodeUserRow(in)
	assert.Equal(t, "Dashboard, Quotations", encoded[6])

	out := DecodeUserRow(roundTrip(t, encoded), 3)
	in.RowIndex = 3
	assert.Equal(t, in, out)
}

func TestDecodeUserRow_Defaults(t *testing.T) {
	out := DecodeUserRow([]any{"SN-001", "EMP-1", "Admin", "admin", "pw"}, 2)
	assert.Equal(t, storage.RoleUser, out.Role)
	assert.Equal(t, storage.StatusActivated, out.Status)
	assert.Empty(t, out.PageAccess)
}

func TestIsInventoryHeader(t *testing.T) {
	assert.True(t, isInventoryHeader([]any{"Timestamp"}))
	assert.True(t, isInventoryHeader([]any{"", "Serial Number"}))
	assert.False(t, isInventoryHeader([]any{"2026-01-01", "INV-1"}))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1900.00", FormatMoney(1900))
	assert.Equal(t, "0.10", FormatMoney(0.1))
	assert.Equal(t, "333.33", FormatMoney(1000.0/3))
}
