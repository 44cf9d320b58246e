package vtex

import (
	"fmt"

	"storefront-proxy/internal/model"
)

// === Checkout ===

// OrderForm is the checkout cart as returned by the orderForm endpoints.
// Prices are in cents.
type OrderForm struct {
	OrderFormID  string             `json:"orderFormId"`
	SalesChannel string             `json:"salesChannel"`
	LoggedIn     bool               `json:"loggedIn"`
	Value        int64              `json:"value"`
	Items        []OrderFormItem    `json:"items"`
	Messages     []OrderFormMessage `json:"messages"`
	Totalizers   []Totalizer        `json:"totalizers"`
}

// validate rejects order forms missing fields reconciliation depends on.
func (o *OrderForm) validate() error {
	if o.OrderFormID == "" {
		return fmt.Errorf("orderForm: missing orderFormId")
	}
	for i, item := range o.Items {
		if item.ID == "" {
			return fmt.Errorf("orderForm: item %d missing id", i)
		}
		if item.Seller == "" {
			return fmt.Errorf("orderForm: item %d missing seller", i)
		}
	}
	return nil
}

// OrderFormItem is one line of an order form.
type OrderFormItem struct {
	UniqueID        string `json:"uniqueId"`
	ID              string `json:"id"`
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	SkuName         string `json:"skuName"`
	RefID           string `json:"refId"`
	EAN             string `json:"ean"`
	ImageURL        string `json:"imageUrl"`
	DetailURL       string `json:"detailUrl"`
	Quantity        int    `json:"quantity"`
	Seller          string `json:"seller"`
	Price           int64  `json:"price"`
	ListPrice       int64  `json:"listPrice"`
	SellingPrice    int64  `json:"sellingPrice"`
	Availability    string `json:"availability"`
	PriceValidUntil string `json:"priceValidUntil"`
}

// OrderFormMessage is a notice attached to an order form.
type OrderFormMessage struct {
	Code   string `json:"code"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// Totalizer is one summary line (items, discounts, shipping) of an order form.
type Totalizer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// OrderFormInputItem is one line of an items update. Quantity zero removes it.
type OrderFormInputItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Seller   string `json:"seller"`
	Index    *int   `json:"index,omitempty"`
}

// orderFormItemsRequest is the body of PATCH /orderForm/{id}/items.
type orderFormItemsRequest struct {
	OrderItems []OrderFormInputItem `json:"orderItems"`
}

// PayloadItem is one item sent for price simulation.
type PayloadItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Seller   string `json:"seller"`
}

// simulationRequest is the body of POST /orderForms/simulation.
type simulationRequest struct {
	Items      []PayloadItem `json:"items"`
	PostalCode string        `json:"postalCode,omitempty"`
	Country    string        `json:"country,omitempty"`
}

// Simulation is a checkout price simulation.
type Simulation struct {
	Items      []SimulationItem   `json:"items"`
	Messages   []OrderFormMessage `json:"messages"`
	PostalCode string             `json:"postalCode"`
	Country    string             `json:"country"`
}

// SimulationItem is the simulated price of one requested item. RequestIndex
// is the position of the item in the request; the platform may reorder items,
// drop unknown ones and add items that were not asked for.
type SimulationItem struct {
	ID              string `json:"id"`
	RequestIndex    *int   `json:"requestIndex"`
	Quantity        int    `json:"quantity"`
	Seller          string `json:"seller"`
	Price           int64  `json:"price"`
	ListPrice       int64  `json:"listPrice"`
	SellingPrice    int64  `json:"sellingPrice"`
	PriceValidUntil string `json:"priceValidUntil"`
	Availability    string `json:"availability"`
}

// === Intelligent Search ===

// SearchType selects the Intelligent Search endpoint.
type SearchType string

const (
	ProductSearch   SearchType = "product_search"
	AttributeSearch SearchType = "attribute_search"
)

// SearchArgs are the arguments of a product or attribute search.
// Page is zero-based.
type SearchArgs struct {
	Query          string
	Page           int
	Count          int
	Sort           string
	SelectedFacets []model.SelectedFacet // Platform keys: trade-policy, category-1, brand, ...
	Fuzzy          string
}

// ProductSearchResult is the product_search response.
type ProductSearchResult struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	Total      int        `json:"total"`
}

// Pagination lists the neighbouring result pages.
type Pagination struct {
	Count   int              `json:"count"`
	Current PaginationPage   `json:"current"`
	Before  []PaginationPage `json:"before"`
	After   []PaginationPage `json:"after"`
	PerPage int              `json:"perPage"`
}

// PaginationPage is one page reference.
type PaginationPage struct {
	Index int    `json:"index"`
	Proxy string `json:"proxyUrl"`
}

// Product is a catalog product with all of its skus.
type Product struct {
	ID            string         `json:"id"`
	Product       string         `json:"product"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Brand         string         `json:"brand"`
	Link          string         `json:"link"`
	CategoryTrees []CategoryPath `json:"categoryTrees"`
	Images        []Image        `json:"images"`
	Skus          []Sku          `json:"skus"`
}

// CategoryPath is one category lineage of a product, root first.
type CategoryPath struct {
	CategoryNames []string `json:"categoryNames"`
	CategoryIDs   []string `json:"categoryIds"`
}

// Image is a catalog image.
type Image struct {
	Name  *string `json:"name"`
	Value string  `json:"value"`
}

// Sku is one sellable variation of a product.
type Sku struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	NameComplete string   `json:"nameComplete"`
	Reference    *string  `json:"reference"`
	Images       []Image  `json:"images"`
	Policies     []Policy `json:"policies"`
	Sellers      []Seller `json:"sellers"`
}

// Policy is a trade policy (sales channel) and the sellers serving it.
type Policy struct {
	ID      string   `json:"id"`
	Sellers []Seller `json:"sellers"`
}

// Seller is a seller of a sku.
type Seller struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// EnhancedSku is a sku with a back-reference to its parent product.
type EnhancedSku struct {
	Sku
	IsVariantOf *Product
}

// Enhance attaches product to sku.
func Enhance(sku Sku, product *Product) EnhancedSku {
	return EnhancedSku{Sku: sku, IsVariantOf: product}
}

// AttributeSearchResult is the attribute_search response.
type AttributeSearchResult struct {
	Total      int         `json:"total"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute is one search facet with its values.
type Attribute struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Type    string           `json:"type"` // "text" or "number"
	Visible bool             `json:"visible"`
	Active  bool             `json:"active"`
	Values  []AttributeValue `json:"values"`
}

// AttributeValue is one value of a facet. Text facets carry Key; range
// facets carry From and To.
type AttributeValue struct {
	Key    *string `json:"key"`
	Label  *string `json:"label"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Active bool    `json:"active"`
	Count  int     `json:"count"`
}

// === Catalog ===

// PortalPagetype describes what a storefront path points to.
type PortalPagetype struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	URL                string `json:"url"`
	Title              string `json:"title"`
	MetaTagDescription string `json:"metaTagDescription"`
	PageType           string `json:"pageType"`
}

// Brand is a catalog brand.
type Brand struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	IsActive           bool    `json:"isActive"`
	Title              string  `json:"title"`
	MetaTagDescription string  `json:"metaTagDescription"`
	ImageURL           *string `json:"imageUrl"`
}

// CategoryTree is a node of the catalog category tree.
type CategoryTree struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	HasChildren        bool           `json:"hasChildren"`
	URL                string         `json:"url"`
	Children           []CategoryTree `json:"children"`
	Title              string         `json:"Title"`
	MetaTagDescription string         `json:"MetaTagDescription"`
}

// errorResponse is the error body of checkout and catalog endpoints.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
