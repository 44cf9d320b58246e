package reconcile

import (
	"context"
	"errors"
	"testing"

	"storefront-proxy/internal/adapter"
	"storefront-proxy/internal/model"
)

// productsFunc adapts a function to ProductLoader.
type productsFunc func(ctx context.Context, skuID string) model.ProductRef

func (f productsFunc) LoadProduct(ctx context.Context, skuID string) model.ProductRef {
	return f(ctx, skuID)
}

func stubProducts(loaded *[]string) ProductLoader {
	return productsFunc(func(ctx context.Context, skuID string) model.ProductRef {
		*loaded = append(*loaded, skuID)
		return func() (*model.Product, error) {
			return &model.Product{SKU: skuID, Name: "Product " + skuID}, nil
		}
	})
}

func cartOf(orderNumber string, offers ...model.Offer) model.CartInput {
	return model.CartInput{Order: model.OrderInput{OrderNumber: orderNumber, AcceptedOffer: offers}}
}

func TestValidateCart_NoChangeSkipsMutation(t *testing.T) {
	mutations := 0
	mock := &adapter.Mock{
		FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
			return &model.OrderSnapshot{ID: id, Items: []model.OrderItem{item("u1", "A", "1", 1000, 2)}}, nil
		},
		MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
			mutations++
			return nil, errors.New("unexpected")
		},
	}
	var loaded []string
	v := NewValidator(mock, stubProducts(&loaded), nil)

	cart, err := v.ValidateCart(context.Background(), cartOf("of-1", offer("A", "1", "10.00", 2)))
	if err != nil {
		t.Fatal(err)
	}
	if cart != nil {
		t.Errorf("cart = %+v, want nil", cart)
	}
	if mutations != 0 {
		t.Errorf("mutations = %d, want 0", mutations)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded products %v, want none", loaded)
	}
}

func TestValidateCart_QuantityIncrease(t *testing.T) {
	before := &model.OrderSnapshot{ID: "of-1", SalesChannel: "1", Items: []model.OrderItem{item("u1", "A", "1", 1000, 1)}}

	tests := []struct {
		name     string
		echoQty  int
		wantCart bool
	}{
		{"accepted", 2, true},
		{"rejected", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var submitted []model.ItemChange
			mock := &adapter.Mock{
				FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
					return before, nil
				},
				MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
					if id != "of-1" {
						t.Errorf("mutated order %s, want of-1", id)
					}
					submitted = changes
					return &model.OrderSnapshot{ID: id, SalesChannel: "1", Items: []model.OrderItem{item("u1", "A", "1", 1000, tt.echoQty)}}, nil
				},
			}
			var loaded []string
			v := NewValidator(mock, stubProducts(&loaded), nil)

			cart, err := v.ValidateCart(context.Background(), cartOf("of-1", offer("A", "1", "10", 2)))
			if err != nil {
				t.Fatal(err)
			}

			if len(submitted) != 1 || submitted[0].ID != "A" || submitted[0].Quantity != 2 || *submitted[0].Index != 0 {
				t.Errorf("submitted = %+v, want A x2 at index 0", submitted)
			}
			if (cart != nil) != tt.wantCart {
				t.Fatalf("cart = %+v, want cart %v", cart, tt.wantCart)
			}
			if cart == nil {
				return
			}

			if cart.Order.OrderNumber != "of-1" || len(cart.Order.AcceptedOffer) != 1 {
				t.Fatalf("cart = %+v", cart)
			}
			o := cart.Order.AcceptedOffer[0]
			if o.Quantity != 2 || o.Price.String() != "10" || o.Seller.Identifier != "1" || o.Availability != model.InStock {
				t.Errorf("offer = %+v", o)
			}
			p, err := o.Product()
			if err != nil || p.SKU != "A" {
				t.Errorf("product = %+v, %v", p, err)
			}
			if len(loaded) != 1 || loaded[0] != "A" {
				t.Errorf("loaded = %v, want [A]", loaded)
			}
		})
	}
}

func TestValidateCart_EmptyCartDeletes(t *testing.T) {
	var submitted []model.ItemChange
	mock := &adapter.Mock{
		FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
			return &model.OrderSnapshot{ID: id, Items: []model.OrderItem{item("u1", "A", "1", 1000, 3)}}, nil
		},
		MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
			submitted = changes
			return &model.OrderSnapshot{
				ID:       id,
				Messages: []model.OrderMessage{{Code: "removed", Text: "Item removed", Status: "warning"}},
			}, nil
		},
	}
	var loaded []string
	v := NewValidator(mock, stubProducts(&loaded), nil)

	cart, err := v.ValidateCart(context.Background(), cartOf("of-1"))
	if err != nil {
		t.Fatal(err)
	}

	if len(submitted) != 1 || submitted[0].Quantity != 0 || submitted[0].ID != "A" {
		t.Errorf("submitted = %+v, want A with quantity 0", submitted)
	}
	if cart == nil {
		t.Fatal("cart = nil, want updated empty cart")
	}
	if len(cart.Order.AcceptedOffer) != 0 {
		t.Errorf("offers = %+v, want none", cart.Order.AcceptedOffer)
	}
	if len(cart.Messages) != 1 || cart.Messages[0].Status != model.StatusWarning || cart.Messages[0].Text != "Item removed" {
		t.Errorf("messages = %+v", cart.Messages)
	}
}

func TestValidateCart_ComparesByIdentityNotPosition(t *testing.T) {
	before := &model.OrderSnapshot{ID: "of-1", Items: []model.OrderItem{
		item("u1", "A", "1", 1000, 1),
		item("u2", "B", "1", 500, 1),
	}}
	mock := &adapter.Mock{
		FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
			return before, nil
		},
		MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
			// Platform ignored the change and returned the lines reordered.
			return &model.OrderSnapshot{ID: id, Items: []model.OrderItem{before.Items[1], before.Items[0]}}, nil
		},
	}
	var loaded []string
	v := NewValidator(mock, stubProducts(&loaded), nil)

	cart, err := v.ValidateCart(context.Background(), cartOf("of-1", offer("A", "1", "10", 4), offer("B", "1", "5", 1)))
	if err != nil {
		t.Fatal(err)
	}
	if cart != nil {
		t.Errorf("cart = %+v, want nil for a reordered but equal cart", cart)
	}
}

func TestValidateCart_NewCart(t *testing.T) {
	var fetched, mutated []string
	mock := &adapter.Mock{
		FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
			fetched = append(fetched, id)
			return &model.OrderSnapshot{ID: "new-of"}, nil
		},
		MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
			mutated = append(mutated, id)
			return &model.OrderSnapshot{ID: id, Items: []model.OrderItem{item("u1", "A", "1", 1000, 1)}}, nil
		},
	}
	var loaded []string
	v := NewValidator(mock, stubProducts(&loaded), nil)

	cart, err := v.ValidateCart(context.Background(), cartOf("", offer("A", "1", "10.00", 1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched) != 1 || fetched[0] != "" {
		t.Errorf("fetched = %q, want one fetch with an empty id", fetched)
	}
	if len(mutated) != 1 || mutated[0] != "new-of" {
		t.Errorf("mutated = %q, want the new order", mutated)
	}
	if cart == nil || cart.Order.OrderNumber != "new-of" {
		t.Fatalf("cart = %+v, want order new-of", cart)
	}
	if len(cart.Order.AcceptedOffer) != 1 || cart.Order.AcceptedOffer[0].Quantity != 1 {
		t.Errorf("offers = %+v", cart.Order.AcceptedOffer)
	}
}

func TestValidateCart_Errors(t *testing.T) {
	notFound := model.NewNotFoundError("checkout resource")
	plain := errors.New("connection reset")

	tests := []struct {
		name      string
		orderID   string
		fetchErr  error
		mutateErr error
		wantIs    error
	}{
		{"fetch fails", "of-1", plain, nil, model.ErrUpstreamError},
		{"fetch not found", "of-1", notFound, nil, model.ErrUpstreamError},
		{"mutate fails", "of-1", nil, plain, model.ErrUpstreamError},
		{"integrity passes through", "of-1", model.NewIntegrityError("checkout", "bad"), nil, model.ErrIntegrity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &adapter.Mock{
				FetchOrderFunc: func(ctx context.Context, id string) (*model.OrderSnapshot, error) {
					if tt.fetchErr != nil {
						return nil, tt.fetchErr
					}
					return &model.OrderSnapshot{ID: id}, nil
				},
				MutateOrderItemsFunc: func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
					return nil, tt.mutateErr
				},
			}
			var loaded []string
			v := NewValidator(mock, stubProducts(&loaded), nil)

			cart, err := v.ValidateCart(context.Background(), cartOf(tt.orderID, offer("A", "1", "10", 1)))
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
			if cart != nil {
				t.Errorf("cart = %+v, want nil on error", cart)
			}
		})
	}
}
