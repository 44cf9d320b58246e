package storefront

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/vtex"
)

// Collection returns the brand, department or category page at slug.
// Its breadcrumb has one entry per path prefix: "office/chairs" lists
// "office" then "office/chairs".
func (s *Service) Collection(ctx context.Context, slug string) (*model.Collection, error) {
	slug = strings.Trim(slug, "/")
	pt, err := s.catalog.Pagetype(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !vtex.IsCollection(pt) {
		return nil, model.NewNotFoundError("collection " + strconv.Quote(slug))
	}

	c := vtex.FromPagetype(pt)
	if c.BreadcrumbList, err = s.breadcrumb(ctx, c.Slug); err != nil {
		return nil, err
	}
	return &c, nil
}

// breadcrumb fetches the page type of every prefix of slug concurrently.
func (s *Service) breadcrumb(ctx context.Context, slug string) (model.BreadcrumbList, error) {
	var segments []string
	for _, seg := range strings.Split(slug, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	items := make([]model.ListItem, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		g.Go(func() error {
			pt, err := s.catalog.Pagetype(gctx, prefix)
			if err != nil {
				return err
			}
			items[i] = model.ListItem{Item: vtex.PagetypePath(pt), Name: pt.Name, Position: i + 1}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BreadcrumbList{}, err
	}
	return model.BreadcrumbList{ItemListElement: items, NumberOfItems: len(items)}, nil
}

// AllCollections lists every brand followed by every category, departments
// first within each branch. Collections without a slug are left out so no
// two routes collide.
func (s *Service) AllCollections(ctx context.Context) (*model.CollectionConnection, error) {
	var (
		brands []vtex.Brand
		tree   []vtex.CategoryTree
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brands, err = s.catalog.Brands(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tree, err = s.catalog.CategoryTree(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collections := make([]model.Collection, 0, len(brands))
	for _, b := range brands {
		collections = append(collections, vtex.FromBrand(b))
	}
	vtex.WalkCategories(tree, func(node vtex.CategoryTree, level int, ancestors []vtex.CategoryTree) {
		collections = append(collections, vtex.FromCategory(node, level, ancestors))
	})

	conn := &model.CollectionConnection{
		PageInfo: model.PageInfo{StartCursor: "0", EndCursor: "0"},
	}
	for _, c := range collections {
		if c.Slug == "" {
			continue
		}
		conn.Edges = append(conn.Edges, model.CollectionEdge{Cursor: strconv.Itoa(len(conn.Edges)), Node: c})
	}
	conn.PageInfo.TotalCount = len(conn.Edges)
	return conn, nil
}
