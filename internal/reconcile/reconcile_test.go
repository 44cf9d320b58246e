package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"storefront-proxy/internal/model"
)

func offer(sku, seller, price string, qty int) model.Offer {
	return model.Offer{
		ItemOffered: model.OfferedItem{SKU: sku},
		Seller:      model.Organization{Identifier: seller},
		Price:       decimal.RequireFromString(price),
		ListPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func item(uniqueID, sku, seller string, cents int64, qty int) model.OrderItem {
	return model.OrderItem{
		UniqueID:     uniqueID,
		ID:           sku,
		Seller:       seller,
		SellingPrice: cents,
		ListPrice:    cents,
		Quantity:     qty,
		Availability: "available",
	}
}

func TestOfferIdentity(t *testing.T) {
	base := offer("A", "1", "10", 2)

	tests := []struct {
		name string
		o    model.Offer
		same bool
	}{
		{"same", offer("A", "1", "10", 2), true},
		{"quantity ignored", offer("A", "1", "10", 7), true},
		{"trailing zeros ignored", offer("A", "1", "10.00", 2), true},
		{"different sku", offer("B", "1", "10", 2), false},
		{"different seller", offer("A", "2", "10", 2), false},
		{"different price", offer("A", "1", "10.01", 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OfferIdentity(tt.o) == OfferIdentity(base); got != tt.same {
				t.Errorf("same identity = %v, want %v", got, tt.same)
			}
		})
	}

	withIndex := offer("A", "1", "10", 2)
	idx := 3
	withIndex.Index = &idx
	if OfferIdentity(withIndex) != OfferIdentity(base) {
		t.Error("index should not be part of identity")
	}
}

func TestItemIdentity_MatchesOffer(t *testing.T) {
	if ItemIdentity(item("u1", "A", "1", 1000, 1)) != OfferIdentity(offer("A", "1", "10", 2)) {
		t.Error("1000 cents should match price 10")
	}
	if ItemIdentity(item("u1", "A", "1", 1050, 1)) != OfferIdentity(offer("A", "1", "10.5", 2)) {
		t.Error("1050 cents should match price 10.5")
	}
}

func TestDiff_EmptyToItems(t *testing.T) {
	delta := Diff([]model.Offer{offer("A", "1", "10", 2), offer("B", "1", "5", 1)}, &model.OrderSnapshot{ID: "of"})

	if len(delta.ToAdd) != 2 || len(delta.ToUpdate) != 0 || len(delta.ToDelete) != 0 {
		t.Errorf("delta = %d/%d/%d, want 2/0/0", len(delta.ToAdd), len(delta.ToUpdate), len(delta.ToDelete))
	}
}

func TestDiff_ItemsToEmpty(t *testing.T) {
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{item("u1", "A", "1", 1000, 1)}}

	delta := Diff(nil, order)

	if len(delta.ToDelete) != 1 || len(delta.ToAdd) != 0 || len(delta.ToUpdate) != 0 {
		t.Fatalf("delta = %+v, want one delete", delta)
	}
	changes := delta.Changes()
	if changes[0].Quantity != 0 || changes[0].ID != "A" || *changes[0].Index != 0 {
		t.Errorf("change = %+v, want A at index 0 with quantity 0", changes[0])
	}
}

func TestDiff_QuantityUpdate(t *testing.T) {
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{
		item("u0", "Z", "1", 100, 1),
		item("u1", "A", "1", 1000, 1),
	}}

	delta := Diff([]model.Offer{offer("Z", "1", "1", 1), offer("A", "1", "10", 2)}, order)

	if len(delta.ToUpdate) != 2 {
		t.Fatalf("ToUpdate = %d, want 2", len(delta.ToUpdate))
	}
	u := delta.ToUpdate[1]
	if u.Item.UniqueID != "u1" || u.Index != 1 || u.Item.Quantity != 1 || u.Quantity != 2 {
		t.Errorf("update = %+v, want server line u1 at 1 going 1 -> 2", u)
	}
	if delta.IsEmpty() {
		t.Error("delta with a quantity change is not empty")
	}
}

func TestDiff_PriceChangeIsNewIdentity(t *testing.T) {
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{item("u1", "A", "1", 1000, 1)}}

	delta := Diff([]model.Offer{offer("A", "1", "9", 1)}, order)

	if len(delta.ToAdd) != 1 || len(delta.ToDelete) != 1 || len(delta.ToUpdate) != 0 {
		t.Errorf("delta = %d/%d/%d, want 1/0/1", len(delta.ToAdd), len(delta.ToUpdate), len(delta.ToDelete))
	}
}

func TestDiff_DuplicateIdentityFirstWins(t *testing.T) {
	delta := Diff([]model.Offer{offer("A", "1", "10", 2), offer("A", "1", "10.0", 5)}, &model.OrderSnapshot{ID: "of"})

	if len(delta.ToAdd) != 1 || delta.ToAdd[0].Quantity != 2 {
		t.Errorf("ToAdd = %+v, want only the first line", delta.ToAdd)
	}

	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{
		item("u1", "A", "1", 1000, 1),
		item("u2", "A", "1", 1000, 4),
	}}
	delta = Diff([]model.Offer{offer("A", "1", "10", 3)}, order)
	if len(delta.ToUpdate) != 1 || delta.ToUpdate[0].Item.UniqueID != "u1" || len(delta.ToDelete) != 0 {
		t.Errorf("delta = %+v, want one update of u1", delta)
	}
}

func TestDiff_Partition(t *testing.T) {
	offers := []model.Offer{
		offer("A", "1", "10", 1),
		offer("B", "1", "10", 2),
		offer("C", "2", "3.5", 1),
		offer("D", "1", "1", 9),
	}
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{
		item("u1", "A", "1", 1000, 1),
		item("u2", "C", "2", 350, 4),
		item("u3", "E", "1", 100, 1),
		item("u4", "D", "1", 200, 9),
	}}

	delta := Diff(offers, order)

	seen := map[string]string{}
	mark := func(key, set string) {
		if prev, ok := seen[key]; ok {
			t.Errorf("%s in both %s and %s", key, prev, set)
		}
		seen[key] = set
	}
	for _, o := range delta.ToAdd {
		mark(OfferIdentity(o), "add")
	}
	for _, u := range delta.ToUpdate {
		mark(ItemIdentity(u.Item), "update")
	}
	for _, l := range delta.ToDelete {
		mark(ItemIdentity(l.Item), "delete")
	}

	want := map[string]bool{}
	for _, o := range offers {
		want[OfferIdentity(o)] = true
	}
	for _, it := range order.Items {
		want[ItemIdentity(it)] = true
	}
	if len(seen) != len(want) {
		t.Errorf("delta covers %d identities, want %d", len(seen), len(want))
	}
	for key := range want {
		if _, ok := seen[key]; !ok {
			t.Errorf("identity %s missing from delta", key)
		}
	}
}

func TestDelta_IsEmpty(t *testing.T) {
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{item("u1", "A", "1", 1000, 2)}}

	if !Diff([]model.Offer{offer("A", "1", "10", 2)}, order).IsEmpty() {
		t.Error("identical cart should produce an empty delta")
	}
	if !Diff(nil, &model.OrderSnapshot{ID: "of"}).IsEmpty() {
		t.Error("two empty carts should produce an empty delta")
	}
}

func TestDelta_ChangesOrder(t *testing.T) {
	order := &model.OrderSnapshot{ID: "of", Items: []model.OrderItem{
		item("u1", "DEL", "1", 100, 1),
		item("u2", "UPD", "1", 100, 1),
	}}
	idx := 7
	add := offer("ADD", "2", "1", 3)
	add.Index = &idx

	changes := Diff([]model.Offer{offer("UPD", "1", "1", 4), add}, order).Changes()

	if len(changes) != 3 {
		t.Fatalf("changes = %+v", changes)
	}
	want := []struct {
		id    string
		qty   int
		index int
	}{
		{"ADD", 3, 7},
		{"UPD", 4, 1},
		{"DEL", 0, 0},
	}
	for i, w := range want {
		c := changes[i]
		if c.ID != w.id || c.Quantity != w.qty || c.Index == nil || *c.Index != w.index {
			t.Errorf("change %d = %+v, want %s x%d at %d", i, c, w.id, w.qty, w.index)
		}
	}
	if changes[0].Seller != "2" {
		t.Errorf("add seller = %s, want 2", changes[0].Seller)
	}
}

func TestSameCart(t *testing.T) {
	base := func() *model.OrderSnapshot {
		return &model.OrderSnapshot{
			ID:           "of",
			SalesChannel: "1",
			Items: []model.OrderItem{
				item("u1", "A", "1", 1000, 1),
				item("u2", "B", "1", 500, 2),
			},
			Messages: []model.OrderMessage{{Code: "c", Text: "t", Status: "info"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(o *model.OrderSnapshot)
		same   bool
	}{
		{"identical", func(o *model.OrderSnapshot) {}, true},
		{"reordered items", func(o *model.OrderSnapshot) { o.Items[0], o.Items[1] = o.Items[1], o.Items[0] }, true},
		{"list price ignored", func(o *model.OrderSnapshot) { o.Items[0].ListPrice = 9999 }, true},
		{"name ignored", func(o *model.OrderSnapshot) { o.Items[0].Name = "renamed" }, true},
		{"quantity", func(o *model.OrderSnapshot) { o.Items[0].Quantity = 5 }, false},
		{"selling price", func(o *model.OrderSnapshot) { o.Items[1].SellingPrice = 499 }, false},
		{"availability", func(o *model.OrderSnapshot) { o.Items[1].Availability = "withoutStock" }, false},
		{"removed item", func(o *model.OrderSnapshot) { o.Items = o.Items[:1] }, false},
		{"messages", func(o *model.OrderSnapshot) { o.Messages = nil }, false},
		{"sales channel", func(o *model.OrderSnapshot) { o.SalesChannel = "2" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base()
			tt.mutate(other)
			if got := SameCart(base(), other); got != tt.same {
				t.Errorf("SameCart = %v, want %v", got, tt.same)
			}
		})
	}
}
