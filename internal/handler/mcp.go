// MCP transport handler for the storefront proxy using the official MCP Go SDK.
// Exposes cart validation and catalog reads as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/storefront"
)

// === MCP Tool Input Types ===

// ValidateCartInput is the input schema for the validate_cart tool.
type ValidateCartInput struct {
	OrderNumber string           `json:"order_number,omitempty" jsonschema:"checkout order form ID, empty to start a new cart"`
	Offers      []CartOfferInput `json:"offers" jsonschema:"cart lines as the client holds them"`
}

// CartOfferInput is one cart line in validate_cart.
type CartOfferInput struct {
	SKU      string `json:"sku" jsonschema:"sku ID"`
	Seller   string `json:"seller" jsonschema:"seller ID"`
	Price    string `json:"price" jsonschema:"unit selling price in major currency units, e.g. 10.5"`
	Quantity int    `json:"quantity" jsonschema:"quantity"`
	Index    *int   `json:"index,omitempty" jsonschema:"position in the order form, omitted for new lines"`
}

// GetProductInput is the input schema for the get_product tool.
type GetProductInput struct {
	Slug    string `json:"slug" jsonschema:"product slug, <link-text>-<sku-id>"`
	Channel string `json:"channel,omitempty" jsonschema:"sales channel overriding the default"`
}

// SearchProductsInput is the input schema for the search_products tool.
type SearchProductsInput struct {
	Term    string                `json:"term,omitempty" jsonschema:"full text query"`
	First   int                   `json:"first,omitempty" jsonschema:"page size"`
	After   string                `json:"after,omitempty" jsonschema:"cursor of the last product already seen"`
	Sort    string                `json:"sort,omitempty" jsonschema:"price_desc, price_asc, orders_desc, name_desc, name_asc, release_desc, discount_desc or score_desc"`
	Facets  []model.SelectedFacet `json:"facets,omitempty" jsonschema:"selected facets"`
	Channel string                `json:"channel,omitempty" jsonschema:"sales channel overriding the default"`
}

// GetCollectionInput is the input schema for the get_collection tool.
type GetCollectionInput struct {
	Slug string `json:"slug" jsonschema:"collection slug, e.g. office/chairs"`
}

// NewMCPServer creates an MCP server with storefront tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront-proxy",
			Version: h.defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: "Storefront proxy - product lookup, search and cart validation. " +
				"Validate a cart before showing totals; a null cart means it is current.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_cart",
		Description: "Reconcile a cart with the store. Returns the updated cart, or null when nothing changed.",
	}, h.mcpValidateCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get a product and its offers by slug.",
	}, h.mcpGetProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Search products. Returns one priced sku per product plus facets.",
	}, h.mcpSearchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_collection",
		Description: "Get a brand, department or category by slug.",
	}, h.mcpGetCollection)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===
//
// Tool results are returned as Out=any: prices are decimals that marshal as
// JSON strings, which an inferred output schema would reject.

func (h *Handler) mcpValidateCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ValidateCartInput,
) (*mcp.CallToolResult, any, error) {
	cart := model.CartInput{Order: model.OrderInput{
		OrderNumber:   input.OrderNumber,
		AcceptedOffer: make([]model.Offer, len(input.Offers)),
	}}
	for i, o := range input.Offers {
		price, err := decimal.NewFromString(o.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("offers[%d].price: invalid decimal %q", i, o.Price)
		}
		cart.Order.AcceptedOffer[i] = model.Offer{
			ItemOffered: model.OfferedItem{SKU: o.SKU},
			ListPrice:   price,
			Price:       price,
			Quantity:    o.Quantity,
			Seller:      model.Organization{Identifier: o.Seller},
			Index:       o.Index,
		}
	}

	updated, err := h.service.ValidateCart(h.toolContext(ctx), cart)
	if err != nil {
		return nil, nil, h.mcpError(ctx, err)
	}
	return nil, cartResponse{Cart: updated}, nil
}

func (h *Handler) mcpGetProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, any, error) {
	if input.Slug == "" {
		return nil, nil, fmt.Errorf("slug is required")
	}

	locator := []model.SelectedFacet{{Key: "slug", Value: input.Slug}}
	if input.Channel != "" {
		locator = append(locator, model.SelectedFacet{Key: "channel", Value: input.Channel})
	}

	product, err := h.service.Product(h.toolContext(ctx), locator)
	if err != nil {
		return nil, nil, h.mcpError(ctx, err)
	}
	return nil, product, nil
}

func (h *Handler) mcpSearchProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchProductsInput,
) (*mcp.CallToolResult, any, error) {
	first := input.First
	if first == 0 {
		first = DefaultPageSize
	}
	facets := input.Facets
	if input.Channel != "" {
		facets = append(facets, model.SelectedFacet{Key: "channel", Value: input.Channel})
	}

	result, err := h.service.Search(h.toolContext(ctx), storefront.SearchInput{
		Term:           input.Term,
		First:          first,
		After:          input.After,
		Sort:           model.Sort(input.Sort),
		SelectedFacets: facets,
	})
	if err != nil {
		return nil, nil, h.mcpError(ctx, err)
	}
	return nil, result, nil
}

func (h *Handler) mcpGetCollection(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetCollectionInput,
) (*mcp.CallToolResult, any, error) {
	if input.Slug == "" {
		return nil, nil, fmt.Errorf("slug is required")
	}

	collection, err := h.service.Collection(h.toolContext(ctx), input.Slug)
	if err != nil {
		return nil, nil, h.mcpError(ctx, err)
	}
	return nil, collection, nil
}

// toolContext gives a tool call the default session and its own loaders.
// Tool calls do not pass through the HTTP middleware chain.
func (h *Handler) toolContext(ctx context.Context) context.Context {
	if session.FromContext(ctx) == (session.Session{}) {
		ctx = session.WithSession(ctx, h.defaults)
	}
	return h.service.WithLoaders(ctx)
}

// mcpError converts service errors to MCP-friendly errors.
func (h *Handler) mcpError(ctx context.Context, err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.ErrorContext(ctx, "mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
