package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elem-admin/internal/service/draft"
	"elem-admin/internal/storage"
)

func TestPlan_AfterRemovingMiddleItem(t *testing.T) {
	d := draft.FromQuotation(&storage.Quotation{
		SerialNo: "QT-005",
		Items: []storage.Item{
			{ItemNo: 1, RowIndex: 2, Title: "A", Price: 1},
			{ItemNo: 2, RowIndex: 3, Title: "B", Price: 1},
			{ItemNo: 3, RowIndex: 4, Title: "C", Price: 1},
		},
	})
	_, err := d.RemoveItem(1)
	require.NoError(t, err)

	p := Plan(d.Items())

	assert.Equal(t, []storage.ItemNoMapping{{OldItemNo: 1, NewItemNo: 1}, {OldItemNo: 3, NewItemNo: 2}}, p.Mapping)
	require.Len(t, p.Updates, 2)
	assert.Equal(t, "A", p.Updates[0].Item.Title)
	assert.Equal(t, 1, p.Updates[0].ItemNo)
	assert.Equal(t, "C", p.Updates[1].Item.Title)
	assert.Equal(t, 2, p.Updates[1].ItemNo)
	assert.Empty(t, p.Inserts)
	assert.False(t, p.Identity())

	assert.Equal(t, []draft.Deletion{{SerialNo: "QT-005", ItemNo: 2, RowIndex: 3}}, d.PendingDeletions())
}

func TestPlan_NewItemsFollowExisting(t *testing.T) {
	p := Plan([]storage.Item{
		{Title: "new-1"},
		{ItemNo: 4, Title: "old-4"},
		{RowIndex: 9, Title: "row but no item no"},
		{ItemNo: 2, Title: "old-2"},
	})

	require.Len(t, p.Updates, 2)
	assert.Equal(t, "old-4", p.Updates[0].Item.Title)
	assert.Equal(t, 4, p.Updates[0].OldItemNo)
	assert.Equal(t, 1, p.Updates[0].ItemNo)
	assert.Equal(t, 2, p.Updates[1].ItemNo)

	require.Len(t, p.Inserts, 2)
	assert.Equal(t, "new-1", p.Inserts[0].Item.Title)
	assert.Equal(t, 3, p.Inserts[0].ItemNo)
	assert.Equal(t, "row but no item no", p.Inserts[1].Item.Title)
	assert.Equal(t, 4, p.Inserts[1].ItemNo)

	ordered := p.Ordered()
	require.Len(t, ordered, 4)
	for i, pl := range ordered {
		assert.Equal(t, i+1, pl.ItemNo)
	}
}

func TestPlan_ContiguousIsIdentityAndIdempotent(t *testing.T) {
	items := []storage.Item{{ItemNo: 1}, {ItemNo: 2}, {ItemNo: 3}}

	first := Plan(items)
	assert.True(t, first.Identity())

	renumbered := make([]storage.Item, 0, len(first.Updates))
	for _, pl := range first.Updates {
		it := pl.Item
		it.ItemNo = pl.ItemNo
		renumbered = append(renumbered, it)
	}
	second := Plan(renumbered)

	assert.Equal(t, first.Mapping, second.Mapping)
	assert.True(t, second.Identity())
}

func TestWaves(t *testing.T) {
	placements := make([]Placement, 12)

	waves := Waves(placements, 5)
	require.Len(t, waves, 3)
	assert.Len(t, waves[0], 5)
	assert.Len(t, waves[1], 5)
	assert.Len(t, waves[2], 2)

	assert.Empty(t, Waves(nil, 5))
	assert.Len(t, Waves(placements[:3], 0), 3)
}

func TestTracker(t *testing.T) {
	tr := NewTracker()

	assert.False(t, tr.Set(PhaseSaving))
	assert.True(t, tr.Set(PhaseValidating))
	tr.fail()

	assert.Equal(t, PhaseIdle, tr.Phase())
	assert.Equal(t, []Phase{PhaseIdle, PhaseValidating, PhaseFailed, PhaseIdle}, tr.History())
}

func TestPlan_FollowsEditedOrder(t *testing.T) {
	persisted := &storage.Quotation{
		SerialNo: "QT-005",
		Items: []storage.Item{
			{ItemNo: 1, RowIndex: 2, Title: "A", Price: 1},
			{ItemNo: 2, RowIndex: 3, Title: "B", Price: 1},
		},
	}
	d, err := draft.Merge(persisted, draft.Header{}, []storage.Item{
		{ItemNo: 2, Title: "B", Price: 1},
		{ItemNo: 1, Title: "A", Price: 1},
	})
	require.NoError(t, err)

	p := Plan(d.Items())

	assert.Equal(t, []storage.ItemNoMapping{{OldItemNo: 2, NewItemNo: 1}, {OldItemNo: 1, NewItemNo: 2}}, p.Mapping)
	assert.False(t, p.Identity())
	assert.Empty(t, d.PendingDeletions())
}
