package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storefront-proxy/internal/model"
)

// OrderService reads and edits the platform's cart.
type OrderService interface {
	FetchOrder(ctx context.Context, id string) (*model.OrderSnapshot, error)
	MutateOrderItems(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error)
}

// ProductLoader returns a deferred product for a sku id. Refs created in the
// same request should resolve through one batched lookup.
type ProductLoader interface {
	LoadProduct(ctx context.Context, skuID string) model.ProductRef
}

// Validator reconciles client carts against the platform.
type Validator struct {
	orders   OrderService
	products ProductLoader
	logger   *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(orders OrderService, products ProductLoader, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{orders: orders, products: products, logger: logger}
}

// ValidateCart makes the platform's cart match cart and returns the result.
// A nil cart with a nil error means the client's cart is current and no
// update needs to be sent. An empty order number makes the platform open a
// new cart, which is then the one updated.
func (v *Validator) ValidateCart(ctx context.Context, cart model.CartInput) (*model.Cart, error) {
	current, err := v.orders.FetchOrder(ctx, cart.Order.OrderNumber)
	if err != nil {
		return nil, upstream(err)
	}

	delta := Diff(cart.Order.AcceptedOffer, current)
	if delta.IsEmpty() {
		v.logger.Debug("cart unchanged", "order", current.ID, "items", len(current.Items))
		return nil, nil
	}

	v.logger.Debug("reconciling cart",
		"order", current.ID,
		"add", len(delta.ToAdd),
		"update", len(delta.ToUpdate),
		"delete", len(delta.ToDelete),
	)

	updated, err := v.orders.MutateOrderItems(ctx, current.ID, delta.Changes())
	if err != nil {
		return nil, upstream(err)
	}

	if SameCart(current, updated) {
		v.logger.Debug("platform kept cart as is", "order", current.ID)
		return nil, nil
	}

	return v.toCart(ctx, updated), nil
}

func (v *Validator) toCart(ctx context.Context, order *model.OrderSnapshot) *model.Cart {
	offers := make([]model.PricedOffer, len(order.Items))
	for i, item := range order.Items {
		offers[i] = model.PricedOffer{
			Availability:    model.AvailabilityURL(item.Availability),
			ItemCondition:   model.NewCondition,
			ListPrice:       model.FromCents(item.ListPrice),
			Price:           model.FromCents(item.SellingPrice),
			SellingPrice:    model.FromCents(item.SellingPrice),
			PriceValidUntil: item.PriceValidUntil,
			Quantity:        item.Quantity,
			Seller:          model.Organization{Identifier: item.Seller},
			Product:         v.products.LoadProduct(ctx, item.ID),
		}
	}

	messages := make([]model.CartMessage, len(order.Messages))
	for i, msg := range order.Messages {
		messages[i] = model.CartMessage{
			Text:   msg.Text,
			Status: model.Status(strings.ToUpper(msg.Status)),
		}
	}

	return &model.Cart{
		Order:    model.Order{OrderNumber: order.ID, AcceptedOffer: offers},
		Messages: messages,
	}
}

// upstream reports order service failures as upstream errors. Errors that
// already carry an upstream classification pass through.
func upstream(err error) error {
	if errors.Is(err, model.ErrUpstreamError) || errors.Is(err, model.ErrIntegrity) {
		return err
	}
	return model.NewUpstreamError("checkout", err)
}
