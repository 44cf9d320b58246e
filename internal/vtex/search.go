package vtex

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront-proxy/internal/model"
)

// policyFacetKey is the platform facet selecting a trade policy (sales channel).
const policyFacetKey = "trade-policy"

// sortMap translates storefront sort orders to Intelligent Search sorts.
// Relevance is the search default and has no explicit value.
var sortMap = map[model.Sort]string{
	model.SortPriceDesc:    "price:desc",
	model.SortPriceAsc:     "price:asc",
	model.SortOrdersDesc:   "orders:desc",
	model.SortNameDesc:     "name:desc",
	model.SortNameAsc:      "name:asc",
	model.SortReleaseDesc:  "release:desc",
	model.SortDiscountDesc: "discount:desc",
	model.SortScoreDesc:    "",
}

// SortFor returns the upstream sort for s. Empty and unknown sorts map to
// relevance.
func SortFor(s model.Sort) string {
	return sortMap[s]
}

// Products runs a product search.
func (c *Client) Products(ctx context.Context, args SearchArgs) (*ProductSearchResult, error) {
	var result ProductSearchResult
	if err := c.doJSON(ctx, "search", http.MethodGet, c.searchEndpoint(ctx, ProductSearch, args), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Facets runs an attribute search, returning the facets of the result set.
func (c *Client) Facets(ctx context.Context, args SearchArgs) (*AttributeSearchResult, error) {
	var result AttributeSearchResult
	if err := c.doJSON(ctx, "search", http.MethodGet, c.searchEndpoint(ctx, AttributeSearch, args), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// searchEndpoint builds /api/split/{type}/{k1}/{v1}/{k2}/{v2}?page=..&count=..
// The request's trade policy is appended unless a facet already selects one.
// Pages are one-based upstream.
func (c *Client) searchEndpoint(ctx context.Context, typ SearchType, args SearchArgs) string {
	facets := withPolicyFacet(args.SelectedFacets, c.channelFor(ctx))

	segments := make([]string, 0, 2*len(facets))
	for _, f := range facets {
		segments = append(segments, url.PathEscape(f.Key), url.PathEscape(f.Value))
	}

	fuzzy := args.Fuzzy
	if fuzzy == "" {
		fuzzy = "0"
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(args.Page+1))
	params.Set("count", strconv.Itoa(args.Count))
	params.Set("query", args.Query)
	params.Set("sort", args.Sort)
	params.Set("fuzzy", fuzzy)

	return c.searchURL + "/api/split/" + string(typ) + "/" + strings.Join(segments, "/") + "?" + params.Encode()
}

func withPolicyFacet(facets []model.SelectedFacet, channel string) []model.SelectedFacet {
	if _, ok := model.FindFacet(facets, policyFacetKey); ok {
		return facets
	}
	out := make([]model.SelectedFacet, 0, len(facets)+1)
	out = append(out, facets...)
	return append(out, model.SelectedFacet{Key: policyFacetKey, Value: channel})
}
