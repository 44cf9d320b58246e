// Package handler provides HTTP handlers for the storefront proxy API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/storefront"
)

// Service is the storefront the handlers expose.
type Service interface {
	ValidateCart(ctx context.Context, cart model.CartInput) (*model.Cart, error)
	Product(ctx context.Context, locator []model.SelectedFacet) (*model.Product, error)
	AllProducts(ctx context.Context, first int, after string) (*model.ProductConnection, error)
	Search(ctx context.Context, in storefront.SearchInput) (*model.SearchResult, error)
	Collection(ctx context.Context, slug string) (*model.Collection, error)
	AllCollections(ctx context.Context) (*model.CollectionConnection, error)
	WithLoaders(ctx context.Context) context.Context
}

var _ Service = (*storefront.Service)(nil)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	service  Service
	defaults session.Session
	logger   *slog.Logger
}

// New creates a new Handler. defaults is the session MCP tool calls run
// with; REST requests get theirs from the session middleware.
func New(svc Service, defaults session.Session, logger *slog.Logger) *Handler {
	return &Handler{
		service:  svc,
		defaults: defaults,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Cart
	mux.HandleFunc("POST /cart/validate", h.handleValidateCart)

	// Catalog
	mux.HandleFunc("GET /products", h.handleAllProducts)
	mux.HandleFunc("GET /products/{slug}", h.handleProduct)
	mux.HandleFunc("GET /search", h.handleSearch)
	mux.HandleFunc("GET /collections", h.handleAllCollections)
	mux.HandleFunc("GET /collections/{slug...}", h.handleCollection)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := h.apiError(r.Context(), err)
	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// apiError finds the APIError in err's chain. Anything else is logged and
// reported as an internal error without details.
func (h *Handler) apiError(ctx context.Context, err error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "upstream failure",
				slog.String("code", apiErr.Code),
				slog.String("error", err.Error()))
		}
		return apiErr
	}

	h.logger.ErrorContext(ctx, "internal error", slog.String("error", err.Error()))
	return &model.APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// DefaultPageSize is used when a listing request omits "first".
const DefaultPageSize = 12

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// parseFirst reads the page size from the query string.
func parseFirst(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("first")
	if raw == "" {
		return DefaultPageSize, nil
	}
	first, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("first", "must be an integer")
	}
	return first, nil
}

// parseFacets reads "key:value" pairs separated by commas. Values may
// contain colons; keys may not.
func parseFacets(raw string) ([]model.SelectedFacet, error) {
	if raw == "" {
		return nil, nil
	}
	var facets []model.SelectedFacet
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, model.NewValidationError("facets", "expected key:value, got "+strconv.Quote(pair))
		}
		facets = append(facets, model.SelectedFacet{Key: key, Value: strings.TrimSpace(value)})
	}
	return facets, nil
}
