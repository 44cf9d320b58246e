// Package vtex is the upstream client for the VTEX commerce platform:
// Checkout (order forms, price simulation), Catalog (brands, category tree,
// portal page types) and Intelligent Search (products, facets).
//
// Responses are decoded into the explicit structs of types.go and converted
// to storefront shapes by transform.go. The active sales channel is read from
// the request session; nothing in the client is request-scoped.
package vtex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-proxy/internal/model"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/transport"
)

// Config holds VTEX account settings.
type Config struct {
	Account     string // Store account name, e.g. "storecomponents"
	Environment string // "vtexcommercestable" or "vtexcommercebeta"
	Channel     string // Sales channel used when the request carries none
	AppKey      string // Optional: X-VTEX-API-AppKey
	AppToken    string // Optional: X-VTEX-API-AppToken

	// BaseURL and SearchURL override the derived endpoints (tests, proxies).
	BaseURL   string
	SearchURL string

	Timeout   time.Duration     // Default: 30s
	Transport http.RoundTripper // Default: Chrome fingerprint transport
	Logger    *slog.Logger
}

// Client talks to one VTEX account.
type Client struct {
	httpClient *http.Client
	baseURL    string
	searchURL  string
	channel    string
	appKey     string
	appToken   string
	logger     *slog.Logger
}

// New creates a VTEX client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Account == "" {
		return nil, fmt.Errorf("account is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = "vtexcommercestable"
	}
	if cfg.Channel == "" {
		cfg.Channel = "1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Transport == nil {
		// Chrome TLS fingerprint avoids JA3-based rate limiting at the CDN.
		cfg.Transport = transport.NewChromeTransport(cfg.Timeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.%s.com.br", cfg.Account, cfg.Environment)
	}
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = fmt.Sprintf("https://portal.%s.com.br/search-api/v1/%s", cfg.Environment, cfg.Account)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		searchURL: strings.TrimSuffix(searchURL, "/"),
		channel:   cfg.Channel,
		appKey:    cfg.AppKey,
		appToken:  cfg.AppToken,
		logger:    cfg.Logger,
	}, nil
}

// channelFor returns the sales channel of the request, or the account default.
func (c *Client) channelFor(ctx context.Context) string {
	return session.ChannelOr(ctx, c.channel)
}

// === Checkout ===

// OrderForm fetches an order form, refreshing outdated prices and availability.
func (c *Client) OrderForm(ctx context.Context, id string) (*OrderForm, error) {
	params := url.Values{}
	params.Set("refreshOutdatedData", "true")
	params.Set("sc", c.channelFor(ctx))

	var form OrderForm
	endpoint := c.baseURL + "/api/checkout/pub/orderForm/" + url.PathEscape(id) + "?" + params.Encode()
	if err := c.doJSON(ctx, "checkout", http.MethodPost, endpoint, nil, &form); err != nil {
		return nil, err
	}
	if err := form.validate(); err != nil {
		return nil, model.NewIntegrityError("checkout", err.Error())
	}
	return &form, nil
}

// UpdateOrderFormItems applies item changes to an order form in one call.
// Items are applied in slice order; quantity zero removes a line.
func (c *Client) UpdateOrderFormItems(ctx context.Context, id string, items []OrderFormInputItem) (*OrderForm, error) {
	params := url.Values{}
	params.Set("allowOutdatedData", "paymentData")
	params.Set("sc", c.channelFor(ctx))

	var form OrderForm
	endpoint := c.baseURL + "/api/checkout/pub/orderForm/" + url.PathEscape(id) + "/items?" + params.Encode()
	body := orderFormItemsRequest{OrderItems: items}
	if err := c.doJSON(ctx, "checkout", http.MethodPatch, endpoint, body, &form); err != nil {
		return nil, err
	}
	if err := form.validate(); err != nil {
		return nil, model.NewIntegrityError("checkout", err.Error())
	}
	return &form, nil
}

// Simulation prices items for the request's sales channel.
func (c *Client) Simulation(ctx context.Context, items []PayloadItem) (*Simulation, error) {
	params := url.Values{}
	params.Set("sc", c.channelFor(ctx))

	var sim Simulation
	endpoint := c.baseURL + "/api/checkout/pub/orderForms/simulation?" + params.Encode()
	if err := c.doJSON(ctx, "simulation", http.MethodPost, endpoint, simulationRequest{Items: items}, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

// === Catalog ===

// Brands lists every catalog brand.
func (c *Client) Brands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	endpoint := c.baseURL + "/api/catalog_system/pub/brand/list"
	if err := c.doJSON(ctx, "catalog", http.MethodGet, endpoint, nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// CategoryTree returns the category tree down to depth levels.
func (c *Client) CategoryTree(ctx context.Context, depth int) ([]CategoryTree, error) {
	if depth <= 0 {
		depth = 3
	}
	var tree []CategoryTree
	endpoint := c.baseURL + "/api/catalog_system/pub/category/tree/" + strconv.Itoa(depth)
	if err := c.doJSON(ctx, "catalog", http.MethodGet, endpoint, nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Pagetype resolves a storefront path (e.g. "office/chairs") to its page type.
func (c *Client) Pagetype(ctx context.Context, slug string) (*PortalPagetype, error) {
	var pt PortalPagetype
	endpoint := c.baseURL + "/api/catalog_system/pub/portal/pagetype/" + escapePath(slug)
	if err := c.doJSON(ctx, "catalog", http.MethodGet, endpoint, nil, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// === HTTP plumbing ===

// userAgent identifies this client to upstream servers.
const userAgent = "Storefront-Proxy/1.0"

// doJSON sends body (if any) as JSON and decodes a successful response into out.
// service names the upstream API in errors.
func (c *Client) doJSON(ctx context.Context, service, method, endpoint string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", service, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", service, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError(service, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewUpstreamError(service, fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("upstream request",
		slog.String("service", service),
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		return parseErrorResponse(service, resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewIntegrityError(service, "parsing response: "+err.Error())
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if hasBody || req.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.appKey != "" && c.appToken != "" {
		req.Header.Set("X-VTEX-API-AppKey", c.appKey)
		req.Header.Set("X-VTEX-API-AppToken", c.appToken)
	}
}

// parseErrorResponse converts a VTEX error to APIError.
func parseErrorResponse(service string, statusCode int, body []byte) error {
	var vErr errorResponse
	json.Unmarshal(body, &vErr) // Best effort parse

	msg := vErr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if len(msg) > 256 {
		msg = msg[:256]
	}

	switch statusCode {
	case http.StatusNotFound:
		return model.NewNotFoundError(service + " resource")
	case http.StatusBadRequest:
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError(service, msg)
	case http.StatusTooManyRequests:
		return model.NewRateLimitError(service)
	default:
		return model.NewUpstreamError(service,
			fmt.Errorf("status %d: %s - %s", statusCode, vErr.Error.Code, msg))
	}
}

// escapePath escapes each segment of a slash separated path.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
