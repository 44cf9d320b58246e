package adapter

import (
	"context"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/vtex"
)

// Mock implements Platform for testing.
// Each method can be configured via function fields.
type Mock struct {
	FetchOrderFunc       func(ctx context.Context, id string) (*model.OrderSnapshot, error)
	MutateOrderItemsFunc func(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error)
	ProductsFunc         func(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error)
	FacetsFunc           func(ctx context.Context, args vtex.SearchArgs) (*vtex.AttributeSearchResult, error)
	SimulationFunc       func(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error)
	BrandsFunc           func(ctx context.Context) ([]vtex.Brand, error)
	CategoryTreeFunc     func(ctx context.Context, depth int) ([]vtex.CategoryTree, error)
	PagetypeFunc         func(ctx context.Context, slug string) (*vtex.PortalPagetype, error)
}

// FetchOrder calls the configured FetchOrderFunc or returns an error.
func (m *Mock) FetchOrder(ctx context.Context, id string) (*model.OrderSnapshot, error) {
	if m.FetchOrderFunc != nil {
		return m.FetchOrderFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("checkout resource")
}

// MutateOrderItems calls the configured MutateOrderItemsFunc or returns an error.
func (m *Mock) MutateOrderItems(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error) {
	if m.MutateOrderItemsFunc != nil {
		return m.MutateOrderItemsFunc(ctx, id, changes)
	}
	return nil, model.NewNotFoundError("checkout resource")
}

// Products calls the configured ProductsFunc or returns an empty result.
func (m *Mock) Products(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error) {
	if m.ProductsFunc != nil {
		return m.ProductsFunc(ctx, args)
	}
	return &vtex.ProductSearchResult{}, nil
}

// Facets calls the configured FacetsFunc or returns an empty result.
func (m *Mock) Facets(ctx context.Context, args vtex.SearchArgs) (*vtex.AttributeSearchResult, error) {
	if m.FacetsFunc != nil {
		return m.FacetsFunc(ctx, args)
	}
	return &vtex.AttributeSearchResult{}, nil
}

// Simulation calls the configured SimulationFunc or returns an empty simulation.
func (m *Mock) Simulation(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error) {
	if m.SimulationFunc != nil {
		return m.SimulationFunc(ctx, items)
	}
	return &vtex.Simulation{}, nil
}

// Brands calls the configured BrandsFunc or returns no brands.
func (m *Mock) Brands(ctx context.Context) ([]vtex.Brand, error) {
	if m.BrandsFunc != nil {
		return m.BrandsFunc(ctx)
	}
	return nil, nil
}

// CategoryTree calls the configured CategoryTreeFunc or returns an empty tree.
func (m *Mock) CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error) {
	if m.CategoryTreeFunc != nil {
		return m.CategoryTreeFunc(ctx, depth)
	}
	return nil, nil
}

// Pagetype calls the configured PagetypeFunc or returns an error.
func (m *Mock) Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error) {
	if m.PagetypeFunc != nil {
		return m.PagetypeFunc(ctx, slug)
	}
	return nil, model.NewNotFoundError("catalog resource")
}
