package model

// OrderSnapshot is the authoritative cart held by the commerce platform.
// Platform clients convert their payloads to this shape so reconciliation
// never depends on a particular wire format.
type OrderSnapshot struct {
	ID           string
	Items        []OrderItem
	Messages     []OrderMessage
	SalesChannel string
}

// OrderItem is one line of an order snapshot. Prices are in cents.
type OrderItem struct {
	UniqueID        string // Platform-assigned line id, stable across updates
	ID              string // SKU id
	Name            string
	Seller          string
	Quantity        int
	ListPrice       int64
	SellingPrice    int64
	Availability    string // "available", "cannotBeDelivered", ...
	PriceValidUntil string
}

// OrderMessage is a status notice attached to an order.
type OrderMessage struct {
	Code   string
	Text   string
	Status string // lowercase on the wire: "info", "warning", "error"
}

// ItemChange is one line of an order items mutation. Quantity zero removes
// the line.
type ItemChange struct {
	ID       string `json:"id"`
	Seller   string `json:"seller"`
	Quantity int    `json:"quantity"`
	Index    *int   `json:"index,omitempty"`
}
