package reconcile

import (
	"github.com/shopspring/decimal"

	"storefront-proxy/internal/model"
)

// OfferIdentity is the identity of a client line: sku, seller and unit price.
// Quantity and position are not part of it.
func OfferIdentity(o model.Offer) string {
	return identity(o.ItemOffered.SKU, o.Seller.Identifier, o.Price)
}

// ItemIdentity is the identity of an order line. Order prices are in cents
// and are compared in major units, the way clients hold them.
func ItemIdentity(item model.OrderItem) string {
	return identity(item.ID, item.Seller, model.FromCents(item.SellingPrice))
}

// identity renders prices canonically, so 10, 10.0 and 10.00 match.
func identity(sku, seller string, price decimal.Decimal) string {
	return sku + "::" + seller + "::" + price.String()
}
