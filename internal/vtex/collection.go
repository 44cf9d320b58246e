package vtex

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"storefront-proxy/internal/model"
)

// collectionPageTypes are the portal page types served as collections.
var collectionPageTypes = map[string]model.CollectionType{
	"Brand":       model.CollectionBrand,
	"Department":  model.CollectionDepartment,
	"Category":    model.CollectionCategory,
	"Subcategory": model.CollectionCategory,
}

// IsCollection reports whether a page type can be served as a collection.
func IsCollection(pt *PortalPagetype) bool {
	_, ok := collectionPageTypes[pt.PageType]
	return ok
}

// PagetypeSlug is the storefront slug of a page type: its URL path without
// the leading slash. Page type URLs carry no scheme.
func PagetypeSlug(pt *PortalPagetype) string {
	return urlPath("https://" + pt.URL)
}

// PagetypePath is the absolute storefront path of a page type.
func PagetypePath(pt *PortalPagetype) string {
	return "/" + PagetypeSlug(pt)
}

// FromPagetype converts a collection page type. The breadcrumb is left empty;
// building it takes one page type lookup per path segment.
func FromPagetype(pt *PortalPagetype) model.Collection {
	s := PagetypeSlug(pt)
	return model.Collection{
		ID:   strconv.FormatInt(pt.ID, 10),
		Slug: s,
		Type: collectionPageTypes[pt.PageType],
		Seo:  model.Seo{Title: pt.Title, Description: pt.MetaTagDescription},
		Meta: model.CollectionMeta{SelectedFacets: categoryFacets(s)},
	}
}

// FromBrand converts a catalog brand.
func FromBrand(b Brand) model.Collection {
	s := slug.Make(b.Name)
	return model.Collection{
		ID:   strconv.FormatInt(b.ID, 10),
		Slug: s,
		Type: model.CollectionBrand,
		Seo:  model.Seo{Title: b.Title, Description: b.MetaTagDescription},
		Meta: model.CollectionMeta{SelectedFacets: []model.SelectedFacet{{Key: "brand", Value: s}}},
		BreadcrumbList: model.BreadcrumbList{
			ItemListElement: []model.ListItem{{Item: "/" + s, Name: b.Name, Position: 1}},
			NumberOfItems:   1,
		},
	}
}

// FromCategory converts a category tree node found at level (0 = department).
// Ancestors are the nodes above it, root first.
func FromCategory(node CategoryTree, level int, ancestors []CategoryTree) model.Collection {
	s := urlPath(node.URL)
	typ := model.CollectionCategory
	if level == 0 {
		typ = model.CollectionDepartment
	}

	lineage := append(append([]CategoryTree(nil), ancestors...), node)
	items := make([]model.ListItem, len(lineage))
	for i, n := range lineage {
		items[i] = model.ListItem{Item: "/" + urlPath(n.URL), Name: n.Name, Position: i + 1}
	}

	return model.Collection{
		ID:             strconv.FormatInt(node.ID, 10),
		Slug:           s,
		Type:           typ,
		Seo:            model.Seo{Title: node.Title, Description: node.MetaTagDescription},
		Meta:           model.CollectionMeta{SelectedFacets: categoryFacets(s)},
		BreadcrumbList: model.BreadcrumbList{ItemListElement: items, NumberOfItems: len(items)},
	}
}

// WalkCategories visits every node of the tree depth first, parents before
// children.
func WalkCategories(tree []CategoryTree, visit func(node CategoryTree, level int, ancestors []CategoryTree)) {
	var walk func(nodes []CategoryTree, level int, ancestors []CategoryTree)
	walk = func(nodes []CategoryTree, level int, ancestors []CategoryTree) {
		for _, n := range nodes {
			visit(n, level, ancestors)
			walk(n.Children, level+1, append(ancestors[:len(ancestors):len(ancestors)], n))
		}
	}
	walk(tree, 0, nil)
}

// categoryFacets selects a category path: "office/chairs" becomes
// category-1/office, category-2/chairs.
func categoryFacets(path string) []model.SelectedFacet {
	var facets []model.SelectedFacet
	for i, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		facets = append(facets, model.SelectedFacet{
			Key:   "category-" + strconv.Itoa(i+1),
			Value: slug.Make(segment),
		})
	}
	return facets
}

// urlPath returns the escaped path of rawURL without its leading slash.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.EscapedPath(), "/")
}
