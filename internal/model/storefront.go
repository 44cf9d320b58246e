// Package model defines the storefront data structures exposed by the proxy,
// the platform-neutral order snapshot consumed by cart reconciliation, and
// the shared error and money helpers.
package model

import (
	"github.com/shopspring/decimal"
)

// === Inputs ===

// SelectedFacet is a key/value pair narrowing a product lookup or search.
// Storefront keys ("slug", "channel") are translated to platform keys by the
// resolver layer before reaching a loader.
type SelectedFacet struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FindFacet returns the value of the first facet with the given key.
func FindFacet(facets []SelectedFacet, key string) (string, bool) {
	for _, f := range facets {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Organization identifies a seller.
type Organization struct {
	Identifier string `json:"identifier"`
}

// Image is a product picture.
type Image struct {
	AlternateName string `json:"alternateName"`
	URL           string `json:"url"`
}

// OfferedItem is the client's view of the product behind a cart line.
type OfferedItem struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Image []Image `json:"image"`
}

// Offer is one product+seller+price line of a cart as the client holds it.
// Prices are in major currency units.
type Offer struct {
	ItemOffered OfferedItem     `json:"itemOffered"`
	ListPrice   decimal.Decimal `json:"listPrice"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Seller      Organization    `json:"seller"`

	// Index is the position of the line in the upstream order. Nil for lines
	// the client added itself.
	Index *int `json:"index,omitempty"`
}

// OrderInput is the order part of a client cart snapshot.
type OrderInput struct {
	OrderNumber   string  `json:"orderNumber"`
	AcceptedOffer []Offer `json:"acceptedOffer"`
}

// CartInput is the cart the client believes it has.
type CartInput struct {
	Order OrderInput `json:"order"`
}

// === Cart output ===

// Status is the severity of a cart message.
type Status string

const (
	StatusInfo    Status = "INFO"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// CartMessage is a notice from the commerce platform about the cart.
type CartMessage struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
}

// Cart is returned when validation changed the cart the client sent.
type Cart struct {
	Order    Order         `json:"order"`
	Messages []CartMessage `json:"messages"`
}

// Order is the order part of a validated cart.
type Order struct {
	OrderNumber   string        `json:"orderNumber"`
	AcceptedOffer []PricedOffer `json:"acceptedOffer"`
}

// ProductRef resolves the product behind an offer on demand. Refs created in
// one request are backed by the same loader, so resolving many of them costs
// a single upstream search.
type ProductRef func() (*Product, error)

// schema.org values used by offers.
const (
	InStock      = "https://schema.org/InStock"
	OutOfStock   = "https://schema.org/OutOfStock"
	NewCondition = "https://schema.org/NewCondition"
)

// AvailabilityURL maps a platform availability ("available",
// "cannotBeDelivered", ...) to its schema.org value.
func AvailabilityURL(availability string) string {
	if availability == "available" {
		return InStock
	}
	return OutOfStock
}

// PricedOffer is an offer as the platform priced it.
type PricedOffer struct {
	Availability    string          `json:"availability"`
	ItemCondition   string          `json:"itemCondition"`
	ItemOffered     *Product        `json:"itemOffered,omitempty"`
	ListPrice       decimal.Decimal `json:"listPrice"`
	Price           decimal.Decimal `json:"price"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	PriceCurrency   string          `json:"priceCurrency"`
	PriceValidUntil string          `json:"priceValidUntil"`
	Quantity        int             `json:"quantity"`
	Seller          Organization    `json:"seller"`

	// Product fills ItemOffered when resolved. Not serialized.
	Product ProductRef `json:"-"`
}

// === Catalog output ===

// Brand is a product brand.
type Brand struct {
	Name string `json:"name"`
}

// Seo carries page metadata for a product or collection.
type Seo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListItem is one step of a breadcrumb.
type ListItem struct {
	Item     string `json:"item"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// BreadcrumbList is the navigation path to a product or collection.
type BreadcrumbList struct {
	ItemListElement []ListItem `json:"itemListElement"`
	NumberOfItems   int        `json:"numberOfItems"`
}

// Product is a sellable SKU together with its parent product data.
type Product struct {
	ProductID      string          `json:"productID"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Slug           string          `json:"slug"`
	GTIN           string          `json:"gtin"`
	Brand          Brand           `json:"brand"`
	Image          []Image         `json:"image"`
	Seo            Seo             `json:"seo"`
	BreadcrumbList BreadcrumbList  `json:"breadcrumbList"`
	IsVariantOf    *ProductGroup   `json:"isVariantOf,omitempty"`
	Offers         *AggregateOffer `json:"offers,omitempty"`
}

// ProductGroup is the parent product of a SKU and all of its variants.
type ProductGroup struct {
	ProductGroupID string    `json:"productGroupID"`
	Name           string    `json:"name"`
	HasVariant     []Product `json:"hasVariant"`
}

// AggregateOffer summarizes the offers of every seller of a product.
type AggregateOffer struct {
	HighPrice     decimal.Decimal `json:"highPrice"`
	LowPrice      decimal.Decimal `json:"lowPrice"`
	OfferCount    int             `json:"offerCount"`
	PriceCurrency string          `json:"priceCurrency"`
	Offers        []PricedOffer   `json:"offers"`
}

// PageInfo describes a page of a connection.
type PageInfo struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
	TotalCount      int    `json:"totalCount"`
}

// ProductEdge is a product with its cursor.
type ProductEdge struct {
	Cursor string  `json:"cursor"`
	Node   Product `json:"node"`
}

// ProductConnection is a page of products.
type ProductConnection struct {
	PageInfo PageInfo      `json:"pageInfo"`
	Edges    []ProductEdge `json:"edges"`
}

// FacetType tells the UI how to render a facet.
type FacetType string

const (
	FacetBoolean FacetType = "BOOLEAN"
	FacetRange   FacetType = "RANGE"
)

// FacetValue is one selectable value of a facet.
type FacetValue struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Quantity int    `json:"quantity"`
}

// Facet is a search refinement.
type Facet struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Type   FacetType    `json:"type"`
	Values []FacetValue `json:"values"`
}

// SearchResult is the outcome of a product search.
type SearchResult struct {
	Products ProductConnection `json:"products"`
	Facets   []Facet           `json:"facets"`
}

// Sort is the storefront sort order for searches.
type Sort string

const (
	SortPriceDesc    Sort = "price_desc"
	SortPriceAsc     Sort = "price_asc"
	SortOrdersDesc   Sort = "orders_desc"
	SortNameDesc     Sort = "name_desc"
	SortNameAsc      Sort = "name_asc"
	SortReleaseDesc  Sort = "release_desc"
	SortDiscountDesc Sort = "discount_desc"
	SortScoreDesc    Sort = "score_desc"
)

// CollectionType classifies a collection page.
type CollectionType string

const (
	CollectionBrand      CollectionType = "Brand"
	CollectionCategory   CollectionType = "Category"
	CollectionDepartment CollectionType = "Department"
	CollectionCluster    CollectionType = "Cluster"
)

// CollectionMeta holds the facets that select a collection's products.
type CollectionMeta struct {
	SelectedFacets []SelectedFacet `json:"selectedFacets"`
}

// Collection is a brand, department or category page.
type Collection struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	Type           CollectionType `json:"type"`
	Seo            Seo            `json:"seo"`
	Meta           CollectionMeta `json:"meta"`
	BreadcrumbList BreadcrumbList `json:"breadcrumbList"`
}

// CollectionEdge is a collection with its cursor.
type CollectionEdge struct {
	Cursor string     `json:"cursor"`
	Node   Collection `json:"node"`
}

// CollectionConnection is a page of collections.
type CollectionConnection struct {
	PageInfo PageInfo         `json:"pageInfo"`
	Edges    []CollectionEdge `json:"edges"`
}
