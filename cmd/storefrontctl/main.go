// storefrontctl is a CLI tool for exercising the storefront proxy.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	storefrontctl product -slug SLUG [-channel N]
//	storefrontctl search [-term T] [-first N] [-after CURSOR] [-sort S] [-facets k:v,k:v]
//	storefrontctl collection [-slug SLUG]
//	storefrontctl validate [-order ID] -offer sku:seller:price:qty[:index] ...
//
// Examples:
//
//	storefrontctl product -proxy http://localhost:8080 -slug office-chair-10
//	storefrontctl search -term chair -sort price_asc -facets brand:acme
//	storefrontctl collection -slug office/chairs
//	storefrontctl validate -order $OF -offer 10:1:99.9:2:0 -offer 11:1:15:1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-proxy/internal/session"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	proxyURL   string
	channel    string
	apiVersion string
	quiet      bool
	noColor    bool
	verbose    bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorCyan, colorGray, colorBold = "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "product":
		runProduct(args)
	case "search":
		runSearch(args)
	case "collection":
		runCollection(args)
	case "validate":
		runValidate(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storefrontctl - storefront proxy test tool

Usage:
  storefrontctl <command> [options]

Commands:
  product     Get a product and its offers
  search      Search products
  collection  Get a collection, or list all collections
  validate    Validate a cart against the store

Examples:
  # Product in sales channel 2
  storefrontctl product -slug office-chair-10 -channel 2

  # Cheapest chairs by Acme
  storefrontctl search -term chair -sort price_asc -facets brand:acme

  # Validate a cart; prints the updated cart or "unchanged"
  storefrontctl validate -order "$OF" -offer 10:1:99.9:2:0

Run 'storefrontctl <command> -h' for command-specific options.
`)
}

// commonFlags registers the flags every command accepts.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&proxyURL, "proxy", "http://localhost:8080", "Storefront proxy base URL")
	fs.StringVar(&channel, "channel", "", "Sales channel sent in Store-Context")
	fs.StringVar(&apiVersion, "api-version", "", "API version sent in Store-Context")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the essential value")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

func parseFlags(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// PRODUCT COMMAND
// =============================================================================

func runProduct(args []string) {
	fs := flag.NewFlagSet("product", flag.ExitOnError)
	commonFlags(fs)
	var slug string
	fs.StringVar(&slug, "slug", "", "Product slug (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefrontctl product -slug SLUG [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	if slug == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/products/"+url.PathEscape(slug), nil)
	if err != nil {
		fatal("Failed to get product: %v", err)
	}

	name, _ := resp["name"].(string)
	if quiet {
		fmt.Println(resp["productID"])
		return
	}
	printSuccess("Product retrieved")
	fmt.Printf("  %s%s%s (sku %v)\n", colorCyan, name, colorReset, resp["sku"])

	if offers, ok := resp["offers"].(map[string]any); ok {
		fmt.Printf("  Price: %s%v - %v%s (%v offers)\n",
			colorGreen, offers["lowPrice"], offers["highPrice"], colorReset, offers["offerCount"])
	}
}

// =============================================================================
// SEARCH COMMAND
// =============================================================================

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	commonFlags(fs)
	var term, after, sort, facets string
	var first int
	fs.StringVar(&term, "term", "", "Full text query")
	fs.IntVar(&first, "first", 12, "Page size")
	fs.StringVar(&after, "after", "", "Cursor of the last product already seen")
	fs.StringVar(&sort, "sort", "", "Sort order (price_asc, price_desc, name_asc, ...)")
	fs.StringVar(&facets, "facets", "", "Selected facets, key:value pairs separated by commas")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefrontctl search [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	q := url.Values{}
	q.Set("first", strconv.Itoa(first))
	for k, v := range map[string]string{"term": term, "after": after, "sort": sort, "facets": facets} {
		if v != "" {
			q.Set(k, v)
		}
	}

	resp, err := doRequest("GET", "/search?"+q.Encode(), nil)
	if err != nil {
		fatal("Search failed: %v", err)
	}

	products, _ := resp["products"].(map[string]any)
	edges, _ := products["edges"].([]any)
	pageInfo, _ := products["pageInfo"].(map[string]any)

	if quiet {
		for _, e := range edges {
			if node, ok := e.(map[string]any)["node"].(map[string]any); ok {
				fmt.Println(node["slug"])
			}
		}
		return
	}

	printSuccess("%d of %v products", len(edges), pageInfo["totalCount"])
	for _, e := range edges {
		edge, _ := e.(map[string]any)
		node, _ := edge["node"].(map[string]any)
		price := "-"
		if offers, ok := node["offers"].(map[string]any); ok {
			price = fmt.Sprint(offers["lowPrice"])
		}
		fmt.Printf("  %s%3v%s %s %s(%s)%s\n", colorGray, edge["cursor"], colorReset,
			node["name"], colorGreen, price, colorReset)
	}
}

// =============================================================================
// COLLECTION COMMAND
// =============================================================================

func runCollection(args []string) {
	fs := flag.NewFlagSet("collection", flag.ExitOnError)
	commonFlags(fs)
	var slug string
	fs.StringVar(&slug, "slug", "", "Collection slug, e.g. office/chairs (lists all when empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefrontctl collection [-slug SLUG] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	if slug == "" {
		resp, err := doRequest("GET", "/collections", nil)
		if err != nil {
			fatal("Failed to list collections: %v", err)
		}
		edges, _ := resp["edges"].([]any)
		printSuccess("%d collections", len(edges))
		for _, e := range edges {
			node, _ := e.(map[string]any)["node"].(map[string]any)
			if quiet {
				fmt.Println(node["slug"])
				continue
			}
			fmt.Printf("  %-12v %s\n", node["type"], node["slug"])
		}
		return
	}

	path := "/collections/" + strings.Trim(slug, "/")
	resp, err := doRequest("GET", path, nil)
	if err != nil {
		fatal("Failed to get collection: %v", err)
	}

	if quiet {
		fmt.Println(resp["id"])
		return
	}
	printSuccess("Collection retrieved")
	fmt.Printf("  %s%v%s %v\n", colorCyan, resp["type"], colorReset, resp["slug"])
	if meta, ok := resp["meta"].(map[string]any); ok {
		for _, f := range asSlice(meta["selectedFacets"]) {
			facet, _ := f.(map[string]any)
			fmt.Printf("  %s%v=%v%s\n", colorGray, facet["key"], facet["value"], colorReset)
		}
	}
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

// offerList collects repeated -offer flags.
type offerList []map[string]any

func (o *offerList) String() string { return fmt.Sprintf("%d offers", len(*o)) }

// Set parses sku:seller:price:qty[:index].
func (o *offerList) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return fmt.Errorf("want sku:seller:price:qty[:index], got %q", v)
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return fmt.Errorf("invalid price %q", parts[2])
	}
	qty, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", parts[3])
	}

	offer := map[string]any{
		"itemOffered": map[string]any{"sku": parts[0]},
		"seller":      map[string]any{"identifier": parts[1]},
		"price":       price,
		"listPrice":   price,
		"quantity":    qty,
	}
	if len(parts) == 5 {
		index, err := strconv.Atoi(parts[4])
		if err != nil {
			return fmt.Errorf("invalid index %q", parts[4])
		}
		offer["index"] = index
	}
	*o = append(*o, offer)
	return nil
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	commonFlags(fs)
	var orderNumber string
	var offers offerList
	fs.StringVar(&orderNumber, "order", "", "Order form ID (empty starts a new cart)")
	fs.Var(&offers, "offer", "Cart line sku:seller:price:qty[:index] (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefrontctl validate [-order ID] [-offer ...] [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	// An empty cart is sent as [] so the proxy clears the order form.
	accepted := []map[string]any(offers)
	if accepted == nil {
		accepted = []map[string]any{}
	}
	reqBody := map[string]any{
		"order": map[string]any{
			"orderNumber":   orderNumber,
			"acceptedOffer": accepted,
		},
	}

	resp, err := doRequest("POST", "/cart/validate", reqBody)
	if err != nil {
		fatal("Failed to validate cart: %v", err)
	}

	cart, _ := resp["cart"].(map[string]any)
	if cart == nil {
		if quiet {
			fmt.Println("unchanged")
		} else {
			printSuccess("Cart is current")
		}
		return
	}

	if quiet {
		fmt.Println("changed")
		return
	}
	printWarning("Cart changed")
	printCartMessages(cart)

	order, _ := cart["order"].(map[string]any)
	for _, o := range asSlice(order["acceptedOffer"]) {
		offer, _ := o.(map[string]any)
		name := ""
		if item, ok := offer["itemOffered"].(map[string]any); ok {
			name, _ = item["name"].(string)
		}
		fmt.Printf("  %vx %s %s%v%s\n", offer["quantity"], name, colorGreen, offer["price"], colorReset)
	}
}

// =============================================================================
// HTTP
// =============================================================================

func doRequest(method, path string, body any) (map[string]any, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, proxyURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if channel != "" || apiVersion != "" {
		header, err := session.FormatHeader(session.Session{Channel: channel, Version: apiVersion})
		if err != nil {
			return nil, fmt.Errorf("building %s header: %w", session.Header, err)
		}
		req.Header.Set(session.Header, header)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...any) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...any) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printError(format string, args ...any) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

// printCartMessages shows platform notices attached to a changed cart.
func printCartMessages(cart map[string]any) {
	for _, m := range asSlice(cart["messages"]) {
		msg, _ := m.(map[string]any)
		text, _ := msg["text"].(string)
		if text == "" {
			continue
		}
		switch msg["status"] {
		case "ERROR":
			printError("%s", text)
		case "WARNING":
			printWarning("%s", text)
		default:
			fmt.Printf("%s  ℹ %s%s\n", colorGray, text, colorReset)
		}
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
