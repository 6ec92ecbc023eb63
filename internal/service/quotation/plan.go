package quotation

import "elem-admin/internal/storage"

// Placement is an item with the item number it will have after the save.
type Placement struct {
	Item      storage.Item
	OldItemNo int
	ItemNo    int
}

// ReconcilePlan splits an edited item list into rows to rewrite and rows to append.
type ReconcilePlan struct {
	Mapping []storage.ItemNoMapping
	Updates []Placement
	Inserts []Placement
}

// Plan keeps the relative order of persisted items and numbers them 1..K, closing gaps
// left by deletions. Items without an item number, whatever else they carry, are inserted
// as K+1..N.
func Plan(items []storage.Item) ReconcilePlan {
	var p ReconcilePlan

	for _, it := range items {
		if it.ItemNo <= 0 {
			continue
		}
		next := len(p.Updates) + 1
		p.Mapping = append(p.Mapping, storage.ItemNoMapping{OldItemNo: it.ItemNo, NewItemNo: next})
		p.Updates = append(p.Updates, Placement{Item: it, OldItemNo: it.ItemNo, ItemNo: next})
	}

	k := len(p.Updates)
	for _, it := range items {
		if it.ItemNo > 0 {
			continue
		}
		p.Inserts = append(p.Inserts, Placement{Item: it, ItemNo: k + len(p.Inserts) + 1})
	}

	return p
}

// Identity reports whether renumbering would change nothing.
func (p ReconcilePlan) Identity() bool {
	for _, m := range p.Mapping {
		if m.OldItemNo != m.NewItemNo {
			return false
		}
	}
	return true
}

// Ordered lists every placement in final sheet order.
func (p ReconcilePlan) Ordered() []Placement {
	out := make([]Placement, 0, len(p.Updates)+len(p.Inserts))
	out = append(out, p.Updates...)
	return append(out, p.Inserts...)
}

// Waves splits placements into consecutive groups of at most size.
func Waves(placements []Placement, size int) [][]Placement {
	if size <= 0 {
		size = 1
	}
	var waves [][]Placement
	for start := 0; start < len(placements); start += size {
		end := min(start+size, len(placements))
		waves = append(waves, placements[start:end])
	}
	return waves
}
