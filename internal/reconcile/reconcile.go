// Package reconcile brings the commerce platform's cart in line with the cart
// a client believes it has. The client cart is optimistic: it was built from
// an earlier response and may have been edited offline since.
//
// ValidateCart fetches the current order, computes a Delta, submits it as a
// single mutation and tells the caller whether the resulting cart differs
// from what it sent. Nothing is persisted between calls.
package reconcile

import (
	"storefront-proxy/internal/model"
)

// Line is an order item together with its position in the order. Positions
// address lines in item mutations.
type Line struct {
	Item  model.OrderItem
	Index int
}

// Update is an order line the client kept. It carries the server's line with
// the quantity the client asked for.
type Update struct {
	Line
	Quantity int
}

// Delta describes the item mutations needed to make the order match the
// client cart. Applied in order: Add → Update → Delete.
type Delta struct {
	ToAdd    []model.Offer // Client lines with no order counterpart
	ToUpdate []Update      // Lines on both sides, including unchanged quantities
	ToDelete []Line        // Order lines the client dropped
}

// IsEmpty returns true if applying the delta would not change the order:
// nothing to add or delete and no quantity differs.
func (d *Delta) IsEmpty() bool {
	if len(d.ToAdd) > 0 || len(d.ToDelete) > 0 {
		return false
	}
	for _, u := range d.ToUpdate {
		if u.Quantity != u.Item.Quantity {
			return false
		}
	}
	return true
}

// Changes flattens the delta into one item mutation, adds first.
// Deleted lines are sent with quantity zero.
func (d *Delta) Changes() []model.ItemChange {
	changes := make([]model.ItemChange, 0, len(d.ToAdd)+len(d.ToUpdate)+len(d.ToDelete))
	for _, o := range d.ToAdd {
		changes = append(changes, model.ItemChange{
			ID:       o.ItemOffered.SKU,
			Seller:   o.Seller.Identifier,
			Quantity: o.Quantity,
			Index:    o.Index,
		})
	}
	for _, u := range d.ToUpdate {
		changes = append(changes, u.change(u.Quantity))
	}
	for _, l := range d.ToDelete {
		changes = append(changes, l.change(0))
	}
	return changes
}

func (l Line) change(quantity int) model.ItemChange {
	index := l.Index
	return model.ItemChange{
		ID:       l.Item.ID,
		Seller:   l.Item.Seller,
		Quantity: quantity,
		Index:    &index,
	}
}

// Diff computes the delta between the client's lines and the order's.
// Lines are matched by identity (see OfferIdentity), never by position.
// When several lines share an identity the first one wins.
//
// Algorithm:
//  1. Index both sides by identity
//  2. For each client line: if the order has it → update; otherwise → add
//  3. For each order line: if the client dropped it → delete
func Diff(offers []model.Offer, order *model.OrderSnapshot) *Delta {
	delta := &Delta{}

	lines := make(map[string]Line, len(order.Items))
	for i, item := range order.Items {
		key := ItemIdentity(item)
		if _, seen := lines[key]; !seen {
			lines[key] = Line{Item: item, Index: i}
		}
	}

	wanted := make(map[string]bool, len(offers))
	for _, o := range offers {
		key := OfferIdentity(o)
		if wanted[key] {
			continue
		}
		wanted[key] = true

		if line, ok := lines[key]; ok {
			delta.ToUpdate = append(delta.ToUpdate, Update{Line: line, Quantity: o.Quantity})
		} else {
			delta.ToAdd = append(delta.ToAdd, o)
		}
	}

	for i, item := range order.Items {
		key := ItemIdentity(item)
		line := lines[key]
		if line.Index != i || wanted[key] {
			continue
		}
		delta.ToDelete = append(delta.ToDelete, line)
	}

	return delta
}
