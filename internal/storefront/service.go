// Package storefront resolves storefront queries (products, search,
// collections and carts) against the commerce platform. Product and price
// lookups go through the request's batch loaders; catalog lookups go to the
// Catalog directly.
package storefront

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"storefront-proxy/internal/loader"
	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/vtex"
)

// Searcher runs product and attribute searches.
type Searcher interface {
	Products(ctx context.Context, args vtex.SearchArgs) (*vtex.ProductSearchResult, error)
	Facets(ctx context.Context, args vtex.SearchArgs) (*vtex.AttributeSearchResult, error)
}

// Catalog serves brands, the category tree and portal page types.
type Catalog interface {
	Brands(ctx context.Context) ([]vtex.Brand, error)
	CategoryTree(ctx context.Context, depth int) ([]vtex.CategoryTree, error)
	Pagetype(ctx context.Context, slug string) (*vtex.PortalPagetype, error)
}

// CartValidator reconciles a client cart with the platform.
type CartValidator interface {
	ValidateCart(ctx context.Context, cart model.CartInput) (*model.Cart, error)
}

// Config holds store settings the resolvers need.
type Config struct {
	// Channel is the sales channel used when the request does not name one.
	Channel string
}

// Service resolves storefront queries.
type Service struct {
	search    Searcher
	catalog   Catalog
	validator CartValidator
	loaders   *loader.Factory
	cfg       Config
	logger    *slog.Logger
}

// New creates a Service.
func New(search Searcher, catalog Catalog, validator CartValidator, loaders *loader.Factory, cfg Config, logger *slog.Logger) *Service {
	if cfg.Channel == "" {
		cfg.Channel = "1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		search:    search,
		catalog:   catalog,
		validator: validator,
		loaders:   loaders,
		cfg:       cfg,
		logger:    logger,
	}
}

// WithLoaders makes sure ctx carries request-scoped loaders. Middleware
// installs them for HTTP requests; other entry points get a fresh set here.
func (s *Service) WithLoaders(ctx context.Context) context.Context {
	if loader.FromContext(ctx) != nil {
		return ctx
	}
	return loader.WithLoaders(ctx, s.loaders.New())
}

func (s *Service) loadersFor(ctx context.Context) *loader.Loaders {
	if l := loader.FromContext(ctx); l != nil {
		return l
	}
	return s.loaders.New()
}

// channel is the sales channel in effect for ctx.
func (s *Service) channel(ctx context.Context) string {
	return session.ChannelOr(ctx, s.cfg.Channel)
}

// platformFacets translates storefront facets to platform facets. A
// "channel" facet becomes "trade-policy" and also switches the sales channel
// of the returned context; a "slug" facet becomes the "id" of its sku.
func platformFacets(ctx context.Context, facets []model.SelectedFacet) (context.Context, []model.SelectedFacet, error) {
	out := make([]model.SelectedFacet, 0, len(facets))
	for _, f := range facets {
		switch f.Key {
		case "channel":
			ctx = session.WithChannel(ctx, f.Value)
			out = append(out, model.SelectedFacet{Key: "trade-policy", Value: f.Value})
		case "slug":
			id, err := skuIDFromSlug(f.Value)
			if err != nil {
				return ctx, nil, err
			}
			out = append(out, model.SelectedFacet{Key: "id", Value: id})
		default:
			out = append(out, f)
		}
	}
	return ctx, out, nil
}

// skuIDFromSlug extracts the sku id from a product slug "<linkText>-<skuId>".
func skuIDFromSlug(slug string) (string, error) {
	i := strings.LastIndex(slug, "-")
	id := slug[i+1:]
	if id == "" {
		return "", model.NewBadRequestError("error while extracting sku id from product slug " + strconv.Quote(slug))
	}
	return id, nil
}

// pageArgs converts connection arguments (first, after) to a zero-based page.
// after is the offset of the last item already seen.
func pageArgs(first int, after string) (page, offset int, err error) {
	if first <= 0 {
		return 0, 0, model.NewValidationError("first", "must be positive")
	}
	if after != "" {
		offset, err = strconv.Atoi(after)
		if err != nil || offset < 0 {
			return 0, 0, model.NewValidationError("after", "must be a non-negative integer")
		}
	}
	return (offset + first - 1) / first, offset, nil
}

func pageInfo(result *vtex.ProductSearchResult) model.PageInfo {
	return model.PageInfo{
		HasNextPage:     len(result.Pagination.After) > 0,
		HasPreviousPage: len(result.Pagination.Before) > 0,
		StartCursor:     "0",
		EndCursor:       strconv.Itoa(result.Total),
		TotalCount:      result.Total,
	}
}
