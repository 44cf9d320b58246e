package storefront

import (
	"context"

	"storefront-proxy/internal/model"
)

// ValidateCart reconciles cart with the platform. A nil cart means the
// client's cart is current. Products of a returned cart are resolved.
func (s *Service) ValidateCart(ctx context.Context, cart model.CartInput) (*model.Cart, error) {
	ctx = s.WithLoaders(ctx)

	updated, err := s.validator.ValidateCart(ctx, cart)
	if err != nil || updated == nil {
		return nil, err
	}
	if err := ResolveCart(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ResolveCart fills ItemOffered of every offer from its deferred product.
// All refs were enqueued when the cart was built, so resolving them one by
// one still costs a single lookup.
func ResolveCart(cart *model.Cart) error {
	for i := range cart.Order.AcceptedOffer {
		offer := &cart.Order.AcceptedOffer[i]
		if offer.Product == nil {
			continue
		}
		p, err := offer.Product()
		if err != nil {
			return err
		}
		offer.ItemOffered = p
	}
	return nil
}
