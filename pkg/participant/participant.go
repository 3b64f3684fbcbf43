// Package participant holds the trading strategies that drive the simulated
// book. Strategies are plain implementations of the Participant interface,
// composed at startup; they talk to the engine only through the Exchange
// surface and learn about their executions through fill callbacks.
package participant

import (
	"math"

	"booksim/pkg/engine"
)

// Exchange is the minimal engine surface a strategy may touch. *engine.Book
// satisfies it.
type Exchange interface {
	Submit(side engine.Side, kind engine.Kind, price float64, qty int64, owner string) (uint64, error)
	Cancel(id uint64) bool
	MidPrice() float64
	BidLevels() []engine.Level
	AskLevels() []engine.Level
}

// Participant is a trading agent invoked once per simulation tick.
type Participant interface {
	Name() string
	Act(x Exchange)
}

// FillHandler is implemented by participants that want execution notices for
// their own orders. The driver routes fills by owner name.
type FillHandler interface {
	HandleFill(f engine.Fill)
}

// round2 snaps a price to cents, the quoting granularity of all strategies.
func round2(p float64) float64 {
	return math.Round(p*100) / 100
}
