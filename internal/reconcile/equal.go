package reconcile

import (
	"cmp"
	"slices"

	"storefront-proxy/internal/model"
)

// itemView is the part of an order line that decides whether a client must
// be sent a new cart. Prices other than the selling price are not compared.
type itemView struct {
	UniqueID     string
	Quantity     int
	Seller       string
	SellingPrice int64
	Availability string
}

// SameCart reports whether two snapshots of an order look the same to a
// client: same id, sales channel and messages, and the same lines compared
// by unique id, quantity, seller, selling price and availability. Line
// order is ignored.
func SameCart(a, b *model.OrderSnapshot) bool {
	if a.ID != b.ID || a.SalesChannel != b.SalesChannel {
		return false
	}
	if !slices.Equal(a.Messages, b.Messages) {
		return false
	}
	return slices.Equal(itemViews(a.Items), itemViews(b.Items))
}

func itemViews(items []model.OrderItem) []itemView {
	views := make([]itemView, len(items))
	for i, item := range items {
		views[i] = itemView{
			UniqueID:     item.UniqueID,
			Quantity:     item.Quantity,
			Seller:       item.Seller,
			SellingPrice: item.SellingPrice,
			Availability: item.Availability,
		}
	}
	slices.SortFunc(views, func(x, y itemView) int {
		return cmp.Or(
			cmp.Compare(x.UniqueID, y.UniqueID),
			cmp.Compare(x.Seller, y.Seller),
			cmp.Compare(x.SellingPrice, y.SellingPrice),
			cmp.Compare(x.Quantity, y.Quantity),
			cmp.Compare(x.Availability, y.Availability),
		)
	})
	return views
}
