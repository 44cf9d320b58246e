// Package adapter defines the interface for commerce platform integrations.
// The storefront reads catalog data, prices items and edits carts only
// through this surface.
package adapter

import (
	"context"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/vtex"
)

// Platform abstracts the commerce platform operations the storefront needs.
// Consumers declare narrower interfaces; Platform is what a complete
// integration provides and what the server wires together.
type Platform interface {
	// FetchOrder returns the platform's current cart.
	FetchOrder(ctx context.Context, id string) (*model.OrderSnapshot, error)

	// MutateOrderItems applies item changes in one call and returns the
	// resulting cart. Quantity zero removes a line.
	MutateOrderItems(ctx context.Context, id string, changes []model.ItemChange) (*model.OrderSnapshot, error)

	// Products runs a product search. The sales channel comes from ctx.
	Products(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error)

	// Facets runs an attribute search over the same arguments as Products.
	Facets(ctx context.Context, args vtex.SearchArgs) (*vtex.AttributeSearchResult, error)

	// Simulation prices items for the sales channel in ctx.
	Simulation(ctx context.Context, items []vtex.PayloadItem) (*vtex.Simulation, error)

	Catalog
}

// Catalog is the slow-changing part of the platform. It is the part worth
// caching.
type Catalog interface {
	Brands(ctx context.Context) ([]vtex.Brand, error)
	CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error)
	Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error)
}

var _ Platform = (*vtex.Client)(nil)

// Override replaces the Catalog of a platform, typically with a cache in
// front of it.
func Override(p Platform, catalog Catalog) Platform {
	return &overridden{Platform: p, catalog: catalog}
}

type overridden struct {
	Platform
	catalog Catalog
}

func (o *overridden) Brands(ctx context.Context) ([]vtex.Brand, error) {
	return o.catalog.Brands(ctx)
}

func (o *overridden) CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error) {
	return o.catalog.CategoryTree(ctx, depth)
}

func (o *overridden) Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error) {
	return o.catalog.Pagetype(ctx, slug)
}
