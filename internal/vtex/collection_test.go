package vtex

import (
	"reflect"
	"testing"

	"storefront-proxy/internal/model"
)

func TestFromPagetype(t *testing.T) {
	pt := &PortalPagetype{
		ID:                 7,
		Name:               "Chairs",
		URL:                "store.com/office/chairs",
		Title:              "Office Chairs",
		MetaTagDescription: "Sit down",
		PageType:           "Subcategory",
	}

	if !IsCollection(pt) {
		t.Fatal("Subcategory should be a collection")
	}

	c := FromPagetype(pt)
	if c.ID != "7" || c.Slug != "office/chairs" || c.Type != model.CollectionCategory {
		t.Errorf("collection = %+v", c)
	}
	if c.Seo.Title != "Office Chairs" || c.Seo.Description != "Sit down" {
		t.Errorf("Seo = %+v", c.Seo)
	}
	want := []model.SelectedFacet{
		{Key: "category-1", Value: "office"},
		{Key: "category-2", Value: "chairs"},
	}
	if !reflect.DeepEqual(c.Meta.SelectedFacets, want) {
		t.Errorf("facets = %+v, want %+v", c.Meta.SelectedFacets, want)
	}
	if PagetypePath(pt) != "/office/chairs" {
		t.Errorf("PagetypePath = %s", PagetypePath(pt))
	}
}

func TestIsCollection(t *testing.T) {
	for pageType, want := range map[string]bool{
		"Brand":       true,
		"Department":  true,
		"Category":    true,
		"Subcategory": true,
		"Product":     false,
		"FullText":    false,
		"":            false,
	} {
		if got := IsCollection(&PortalPagetype{PageType: pageType}); got != want {
			t.Errorf("IsCollection(%q) = %v, want %v", pageType, got, want)
		}
	}
}

func TestFromBrand(t *testing.T) {
	c := FromBrand(Brand{ID: 3, Name: "Acme Tools", Title: "Acme"})

	if c.Slug != "acme-tools" || c.Type != model.CollectionBrand || c.ID != "3" {
		t.Errorf("collection = %+v", c)
	}
	want := []model.SelectedFacet{{Key: "brand", Value: "acme-tools"}}
	if !reflect.DeepEqual(c.Meta.SelectedFacets, want) {
		t.Errorf("facets = %+v", c.Meta.SelectedFacets)
	}
}

func TestWalkCategories(t *testing.T) {
	tree := []CategoryTree{
		{ID: 1, Name: "Office", URL: "https://store.com/office", Children: []CategoryTree{
			{ID: 2, Name: "Chairs", URL: "https://store.com/office/chairs"},
			{ID: 3, Name: "Desks", URL: "https://store.com/office/desks"},
		}},
		{ID: 4, Name: "Kitchen", URL: "https://store.com/kitchen"},
	}

	var got []model.Collection
	WalkCategories(tree, func(node CategoryTree, level int, ancestors []CategoryTree) {
		got = append(got, FromCategory(node, level, ancestors))
	})

	wantSlugs := []string{"office", "office/chairs", "office/desks", "kitchen"}
	wantTypes := []model.CollectionType{
		model.CollectionDepartment, model.CollectionCategory, model.CollectionCategory, model.CollectionDepartment,
	}
	if len(got) != len(wantSlugs) {
		t.Fatalf("visited %d nodes, want %d", len(got), len(wantSlugs))
	}
	for i := range got {
		if got[i].Slug != wantSlugs[i] || got[i].Type != wantTypes[i] {
			t.Errorf("node %d = %s/%s, want %s/%s", i, got[i].Slug, got[i].Type, wantSlugs[i], wantTypes[i])
		}
	}

	desks := got[2].BreadcrumbList
	if desks.NumberOfItems != 2 || desks.ItemListElement[0].Name != "Office" || desks.ItemListElement[1].Item != "/office/desks" {
		t.Errorf("desks breadcrumb = %+v", desks)
	}
}
