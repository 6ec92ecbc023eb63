package draft

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elem-admin/internal/storage"
)

func persistedQuotation() *storage.Quotation {
	return &storage.Quotation{
		SerialNo:     "QT-007",
		Date:         "2026-03-01 10:00:00",
		EmployeeCode: "EMP-1",
		Customer:     storage.CustomerRef{ID: "CN-0001", Name: "Asha"},
		Items: []storage.Item{
			{RowIndex: 10, ItemNo: 1, Title: "Sofa", Qty: 1, Price: 100},
			{RowIndex: 11, ItemNo: 2, Title: "Lamp", Qty: 1, Price: 200},
			{RowIndex: 12, ItemNo: 3, Title: "Rug", Qty: 1, Price: 300},
		},
		State: storage.StateConfirmed,
	}
}

func TestAddItem_Validation(t *testing.T) {
	d := New(Header{})

	_, err := d.AddItem(storage.Item{Title: "Sofa", Price: 0})
	assert.True(t, errors.Is(err, ErrInvalidPrice))

	_, err = d.AddItem(storage.Item{Title: "  ", Price: 10})
	assert.True(t, errors.Is(err, ErrEmptyTitle))

	_, err = d.AddItem(storage.Item{Title: "Sofa", Price: 10, Discount: 120})
	assert.True(t, errors.Is(err, ErrInvalidDiscount))

	it, err := d.AddItem(storage.Item{Title: "Sofa", Price: 0.01})
	require.NoError(t, err)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, 1.0, it.Qty)
	assert.Zero(t, it.ItemNo)
	assert.Equal(t, 1, d.Len())
}

func TestAddItem_Cap(t *testing.T) {
	d := New(Header{})
	for i := 0; i < MaxItems; i++ {
		_, err := d.AddItem(storage.Item{Title: "x", Price: 1})
		require.NoError(t, err)
	}

	_, err := d.AddItem(storage.Item{Title: "x", Price: 1})
	assert.True(t, errors.Is(err, ErrTooManyItems))
	assert.Equal(t, MaxItems, d.Len())
}

func TestUpdateItem_KeepsIdentity(t *testing.T) {
	d := FromQuotation(persistedQuotation())
	before := d.Items()

	err := d.UpdateItem(1, storage.Item{Title: "Floor lamp", Qty: 2, Price: 0})
	require.NoError(t, err)

	after := d.Items()
	assert.Equal(t, "Floor lamp", after[1].Title)
	assert.Equal(t, before[1].ID, after[1].ID)
	assert.Equal(t, 2, after[1].ItemNo)
	assert.Equal(t, 11, after[1].RowIndex)

	// the earlier snapshot is unaffected
	assert.Equal(t, "Lamp", before[1].Title)

	assert.True(t, errors.Is(d.UpdateItem(1, storage.Item{Title: "x", Price: -1}), ErrNegativePrice))
	assert.True(t, errors.Is(d.UpdateItem(1, storage.Item{Title: "", Price: 1}), ErrEmptyTitle))
	assert.True(t, errors.Is(d.UpdateItem(5, storage.Item{Title: "x", Price: 1}), ErrIndexOutOfRange))
}

func TestRemoveItem_RecordsPendingDeletion(t *testing.T) {
	d := FromQuotation(persistedQuotation())

	removed, err := d.RemoveItem(1)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", removed.Title)

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Sofa", items[0].Title)
	assert.Equal(t, "Rug", items[1].Title)

	assert.Equal(t, []Deletion{{SerialNo: "QT-007", ItemNo: 2, RowIndex: 11}}, d.PendingDeletions())
}

func TestRemoveItem_NewItemHasNoDeletion(t *testing.T) {
	d := New(Header{})
	_, err := d.AddItem(storage.Item{Title: "Sofa", Price: 10})
	require.NoError(t, err)

	_, err = d.RemoveItem(0)
	require.NoError(t, err)
	assert.Empty(t, d.PendingDeletions())
	assert.Zero(t, d.Len())
}

func TestTotal_Scenario(t *testing.T) {
	d := New(Header{})
	_, err := d.AddItem(storage.Item{Title: "Chair", Qty: 2, Price: 500, Discount: 10})
	require.NoError(t, err)
	_, err = d.AddItem(storage.Item{Title: "Table", Qty: 1, Price: 1000})
	require.NoError(t, err)

	assert.Equal(t, 1900.0, d.Total())
}

func TestTotal_MatchesLineFormula(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		d := New(Header{})
		var want float64
		n := 1 + r.Intn(20)
		for i := 0; i < n; i++ {
			it := storage.Item{
				Title:    "item",
				Qty:      float64(1 + r.Intn(50)),
				Price:    0.01 + r.Float64()*10000,
				Discount: r.Float64() * 100,
			}
			_, err := d.AddItem(it)
			require.NoError(t, err)
			want += it.Qty * it.Price * (1 - it.Discount/100)
		}
		assert.Equal(t, want, d.Total())
	}
}

func TestQuotation_IsPending(t *testing.T) {
	d := New(Header{SerialNo: "QT-001"})
	_, err := d.AddItem(storage.Item{Title: "Sofa", Price: 10})
	require.NoError(t, err)

	q := d.Quotation()
	assert.Equal(t, storage.StatePending, q.State)
	assert.Len(t, q.Items, 1)
}

func TestMerge(t *testing.T) {
	persisted := persistedQuotation()

	edited := []storage.Item{
		{ItemNo: 3, Title: "Wool rug", Qty: 1, Price: 350},
		{Title: "Mirror", Qty: 1, Price: 80},
		{ItemNo: 1, Title: "Sofa", Qty: 2, Price: 100},
	}

	d, err := Merge(persisted, Header{Customer: storage.CustomerRef{Name: "Asha V"}}, edited)
	require.NoError(t, err)

	items := d.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Wool rug", items[0].Title)
	assert.Equal(t, 3, items[0].ItemNo)
	assert.Equal(t, 12, items[0].RowIndex)
	assert.Equal(t, "Sofa", items[1].Title)
	assert.Equal(t, 2.0, items[1].Qty)
	assert.Equal(t, 1, items[1].ItemNo)
	assert.Equal(t, "Mirror", items[2].Title)
	assert.Zero(t, items[2].ItemNo)

	assert.Equal(t, []Deletion{{SerialNo: "QT-007", ItemNo: 2, RowIndex: 11}}, d.PendingDeletions())
	assert.Equal(t, "QT-007", d.Header.SerialNo)
	assert.Equal(t, "EMP-1", d.Header.EmployeeCode)
	assert.Equal(t, "Asha V", d.Header.Customer.Name)
}

func TestMerge_UnknownItemNoIsInserted(t *testing.T) {
	d, err := Merge(persistedQuotation(), Header{}, []storage.Item{
		{ItemNo: 1, Title: "Sofa", Price: 100},
		{ItemNo: 9, Title: "Ghost", Price: 5},
	})
	require.NoError(t, err)

	items := d.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Ghost", items[1].Title)
	assert.Zero(t, items[1].ItemNo)
	assert.Len(t, d.PendingDeletions(), 2)
	assert.Equal(t, persistedQuotation().Customer, d.Header.Customer)
}

func TestMerge_RejectsInvalidNewItem(t *testing.T) {
	_, err := Merge(persistedQuotation(), Header{}, []storage.Item{{Title: "Free", Price: 0}})
	assert.True(t, errors.Is(err, ErrInvalidPrice))
}
