package storefront

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/vtex"
)

// Product returns the product selected by locator, priced for the request's
// sales channel. The locator must identify a sku through an "id" or "slug"
// facet; a "channel" facet overrides the session's sales channel.
func (s *Service) Product(ctx context.Context, locator []model.SelectedFacet) (*model.Product, error) {
	ctx, facets, err := platformFacets(s.WithLoaders(ctx), locator)
	if err != nil {
		return nil, err
	}

	sku, err := s.loadersFor(ctx).Sku(ctx).Load(ctx, facets)()
	if err != nil {
		return nil, err
	}

	p := vtex.ToProduct(sku)
	if p.Offers, err = s.Offers(ctx, sku); err != nil {
		return nil, err
	}
	return &p, nil
}

// Offers prices a sku with every seller of the trade policy matching the
// request's sales channel. One item per distinct seller is simulated.
func (s *Service) Offers(ctx context.Context, sku vtex.EnhancedSku) (*model.AggregateOffer, error) {
	items, err := s.offerItems(ctx, sku)
	if err != nil {
		return nil, err
	}

	sim, err := s.loadersFor(ctx).Simulation(ctx).Load(ctx, items)()
	if err != nil {
		return nil, err
	}
	return vtex.ToAggregateOffer(sim), nil
}

// offerItems builds the simulation payload of a sku: one item per distinct
// seller of the channel's trade policy.
func (s *Service) offerItems(ctx context.Context, sku vtex.EnhancedSku) ([]vtex.PayloadItem, error) {
	channel := s.channel(ctx)

	var sellers []vtex.Seller
	found := false
	for _, policy := range sku.Policies {
		if policy.ID == channel {
			sellers, found = policy.Sellers, true
			break
		}
	}
	if !found {
		return nil, model.NewNoSellersError(sku.ID, channel)
	}

	seen := make(map[string]bool, len(sellers))
	items := make([]vtex.PayloadItem, 0, len(sellers))
	for _, seller := range sellers {
		if seen[seller.ID] {
			continue
		}
		seen[seller.ID] = true
		items = append(items, vtex.PayloadItem{ID: sku.ID, Quantity: 1, Seller: seller.ID})
	}
	return items, nil
}

// SearchInput are the arguments of a product search.
type SearchInput struct {
	Term           string
	First          int
	After          string
	Sort           model.Sort
	SelectedFacets []model.SelectedFacet
}

// Search runs a product search and returns one sku per matching product
// (the first one that has sellers) with its offers, plus the facets of the
// result set.
func (s *Service) Search(ctx context.Context, in SearchInput) (*model.SearchResult, error) {
	page, _, err := pageArgs(in.First, in.After)
	if err != nil {
		return nil, err
	}
	ctx, facets, err := platformFacets(s.WithLoaders(ctx), in.SelectedFacets)
	if err != nil {
		return nil, err
	}

	sort := in.Sort
	if sort == "" {
		sort = model.SortScoreDesc
	}
	args := vtex.SearchArgs{
		Query:          in.Term,
		Page:           page,
		Count:          in.First,
		Sort:           vtex.SortFor(sort),
		SelectedFacets: facets,
	}

	var (
		products *vtex.ProductSearchResult
		attrs    *vtex.AttributeSearchResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.search.Products(gctx, args)
		return err
	})
	g.Go(func() error {
		var err error
		attrs, err = s.search.Facets(gctx, args)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var skus []vtex.EnhancedSku
	for i := range products.Products {
		product := &products.Products[i]
		for _, sku := range product.Skus {
			if len(sku.Sellers) > 0 {
				skus = append(skus, vtex.Enhance(sku, product))
				break
			}
		}
	}

	edges, err := s.pricedEdges(ctx, skus, 0)
	if err != nil {
		return nil, err
	}

	return &model.SearchResult{
		Products: model.ProductConnection{PageInfo: pageInfo(products), Edges: edges},
		Facets:   vtex.ToFacets(attrs.Attributes),
	}, nil
}

// pricedEdges converts skus to product edges and prices them. All
// simulations are enqueued on the request's simulation loader together, so
// they go upstream in batches.
func (s *Service) pricedEdges(ctx context.Context, skus []vtex.EnhancedSku, offset int) ([]model.ProductEdge, error) {
	edges := make([]model.ProductEdge, len(skus))
	payloads := make([][]vtex.PayloadItem, len(skus))
	for i, sku := range skus {
		items, err := s.offerItems(ctx, sku)
		if err != nil {
			return nil, err
		}
		payloads[i] = items
		edges[i] = model.ProductEdge{Cursor: strconv.Itoa(offset + i), Node: vtex.ToProduct(sku)}
	}

	sims, err := s.loadersFor(ctx).Simulation(ctx).LoadMany(ctx, payloads)
	if err != nil {
		return nil, err
	}
	for i, sim := range sims {
		edges[i].Node.Offers = vtex.ToAggregateOffer(sim)
	}
	return edges, nil
}

// AllProducts lists every sellable sku page by page, without offers.
func (s *Service) AllProducts(ctx context.Context, first int, after string) (*model.ProductConnection, error) {
	page, offset, err := pageArgs(first, after)
	if err != nil {
		return nil, err
	}

	result, err := s.search.Products(ctx, vtex.SearchArgs{Page: page, Count: first})
	if err != nil {
		return nil, err
	}

	var edges []model.ProductEdge
	for i := range result.Products {
		product := &result.Products[i]
		for _, sku := range product.Skus {
			if len(sku.Sellers) == 0 {
				continue
			}
			edges = append(edges, model.ProductEdge{
				Cursor: strconv.Itoa(offset + len(edges)),
				Node:   vtex.ToProduct(vtex.Enhance(sku, product)),
			})
		}
	}

	return &model.ProductConnection{PageInfo: pageInfo(result), Edges: edges}, nil
}
