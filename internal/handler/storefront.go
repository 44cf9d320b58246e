package handler

import (
	"log/slog"
	"net/http"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/storefront"
)

// cartResponse wraps the validated cart. A null cart tells the client its
// cart is current.
type cartResponse struct {
	Cart *model.Cart `json:"cart"`
}

// handleValidateCart reconciles the client's cart with the platform.
// POST /cart/validate
func (h *Handler) handleValidateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.CartInput
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "validating cart",
		slog.String("order_number", req.Order.OrderNumber),
		slog.Int("offers", len(req.Order.AcceptedOffer)),
	)

	cart, err := h.service.ValidateCart(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, cartResponse{Cart: cart})
}

// handleProduct returns one product with its offers.
// GET /products/{slug}?channel=
func (h *Handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	locator := []model.SelectedFacet{{Key: "slug", Value: r.PathValue("slug")}}
	if channel := r.URL.Query().Get("channel"); channel != "" {
		locator = append(locator, model.SelectedFacet{Key: "channel", Value: channel})
	}

	product, err := h.service.Product(r.Context(), locator)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// handleAllProducts lists products page by page.
// GET /products?first=&after=
func (h *Handler) handleAllProducts(w http.ResponseWriter, r *http.Request) {
	first, err := parseFirst(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	products, err := h.service.AllProducts(r.Context(), first, r.URL.Query().Get("after"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// handleSearch runs a product search.
// GET /search?term=&first=&after=&sort=&facets=k:v,k:v
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	first, err := parseFirst(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	facets, err := parseFacets(q.Get("facets"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	in := storefront.SearchInput{
		Term:           q.Get("term"),
		First:          first,
		After:          q.Get("after"),
		Sort:           model.Sort(q.Get("sort")),
		SelectedFacets: facets,
	}

	h.logger.DebugContext(ctx, "searching products",
		slog.String("term", in.Term),
		slog.Int("first", in.First),
		slog.Int("facets", len(in.SelectedFacets)),
	)

	result, err := h.service.Search(ctx, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// handleAllCollections lists brands and categories.
// GET /collections
func (h *Handler) handleAllCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.AllCollections(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, collections)
}

// handleCollection returns the collection at a (possibly nested) slug.
// GET /collections/{slug...}
func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, r, model.NewValidationError("slug", "collection slug required"))
		return
	}

	collection, err := h.service.Collection(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, collection)
}
