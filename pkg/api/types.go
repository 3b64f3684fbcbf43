package api

// JSON types for REST responses and WebSocket messages.

// PriceLevel is one aggregated (price, quantity) rung of the book.
type PriceLevel struct {
	Price float64 `json:"price"`
	Qty   int64   `json:"qty"`
}

// BookSnapshot is the current depth of both sides. Bids are sorted high to
// low, asks low to high.
type BookSnapshot struct {
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Mid       float64      `json:"mid"`
	Timestamp int64        `json:"timestamp"` // unix milliseconds
}

// TradeInfo is one execution from the trade log.
type TradeInfo struct {
	Price     float64 `json:"price"`
	Qty       int64   `json:"qty"`
	Side      string  `json:"side"` // aggressor side
	Timestamp int64   `json:"timestamp"`
}

// MidPriceResponse carries the current reference price.
type MidPriceResponse struct {
	Mid float64 `json:"mid"`
}

// Candle is one OHLCV bar aggregated from the trade log.
type Candle struct {
	Start  int64   `json:"start"` // bucket start, unix milliseconds
	End    int64   `json:"end"`   // bucket end, exclusive
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
	Count  int64   `json:"count"`
}

// SubmitOrderRequest is the payload for POST /api/v1/orders.
type SubmitOrderRequest struct {
	Side     string  `json:"side"` // "BUY" or "SELL"
	Type     string  `json:"type"` // "LIMIT" or "MARKET"
	Price    float64 `json:"price,omitempty"`
	Quantity int64   `json:"quantity"`
	Owner    string  `json:"owner,omitempty"`
}

// SubmitOrderResponse reports the admission outcome. Accepted=false with a
// message covers the ordinary business rejection (market order into an empty
// side).
type SubmitOrderResponse struct {
	Accepted bool   `json:"accepted"`
	OrderID  uint64 `json:"orderId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// CancelOrderRequest is the payload for POST /api/v1/orders/cancel.
type CancelOrderRequest struct {
	OrderID uint64 `json:"orderId"`
}

// CancelOrderResponse reports whether the id referred to a live order.
type CancelOrderResponse struct {
	Accepted bool `json:"accepted"`
}

// ErrorResponse is returned for malformed or invalid requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WSSubscribeRequest is sent by clients to manage channel subscriptions.
// Channels: "book", "trades".
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// BookUpdate is broadcast on the "book" channel after every simulation tick.
type BookUpdate struct {
	Type      string       `json:"type"` // "book"
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Mid       float64      `json:"mid"`
	Timestamp int64        `json:"timestamp"`
}

// TradeUpdate is broadcast on the "trades" channel for every execution.
type TradeUpdate struct {
	Type      string  `json:"type"` // "trade"
	Price     float64 `json:"price"`
	Qty       int64   `json:"qty"`
	Side      string  `json:"side"`
	Timestamp int64   `json:"timestamp"`
}
