package engine

import (
	"errors"
	"time"
)

// Side is the direction of an order.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the side an order of side s executes against.
func (s Side) Opposite() Side { return -s }

// Kind selects the execution style of an order.
type Kind int8

const (
	// Limit orders carry a price and rest on the book until filled or cancelled.
	Limit Kind = iota
	// Market orders execute immediately against resting liquidity and never rest.
	Market
)

func (k Kind) String() string {
	if k == Market {
		return "MARKET"
	}
	return "LIMIT"
}

var (
	// ErrInvalidQuantity is returned when an order's quantity is not positive.
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	// ErrInvalidPrice is returned when a limit order's price is not a finite positive value.
	ErrInvalidPrice = errors.New("limit price must be finite and positive")
	// ErrNoLiquidity is returned when a market order arrives with no resting
	// orders on the opposite side. This is a business outcome, not a fault:
	// the book is left untouched.
	ErrNoLiquidity = errors.New("no opposing liquidity for market order")
)

// Order is a resting or in-flight trading instruction. IDs are assigned by
// the book at submission, increase monotonically and are never reused.
// Qty is decremented as the order fills; the order leaves the book exactly
// when Qty reaches zero.
type Order struct {
	ID    uint64
	Side  Side
	Kind  Kind
	Price float64 // ignored for market orders
	Qty   int64
	Owner string
	Time  time.Time // admission time, the time-priority tie-breaker
}

// Trade is an immutable record of a single execution. Side tags the
// aggressor: the market order's side, or for a cross between two resting
// limit orders, the side of the later-arriving order.
type Trade struct {
	Time  time.Time
	Price float64
	Qty   int64
	Side  Side
}

// Fill notifies an order's owner of one execution against that order.
// Remaining is the order's quantity after this execution; zero means the
// order is done.
type Fill struct {
	OrderID   uint64
	Owner     string
	Side      Side
	Price     float64
	Qty       int64
	Remaining int64
}

// Level aggregates resting quantity at one price.
type Level struct {
	Price float64
	Qty   int64
}
