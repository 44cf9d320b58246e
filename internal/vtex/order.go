package vtex

import (
	"context"

	"storefront-proxy/internal/model"
)

// FetchOrder returns the current state of an order form.
func (c *Client) FetchOrder(ctx context.Context, id string) (*model.OrderSnapshot, error) {
	form, err := c.OrderForm(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderSnapshot(form), nil
}

// MutateOrderItems submits item changes to an order form and returns the
// resulting state.
func (c *Client) MutateOrderItems(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
	items := make([]OrderFormInputItem, len(changes))
	for i, ch := range changes {
		items[i] = OrderFormInputItem{
			ID:       ch.ID,
			Quantity: ch.Quantity,
			Seller:   ch.Seller,
			Index:    ch.Index,
		}
	}

	form, err := c.UpdateOrderFormItems(ctx, id, items)
	if err != nil {
		return nil, err
	}
	return ToOrderSnapshot(form), nil
}
