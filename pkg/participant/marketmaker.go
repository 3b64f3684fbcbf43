package participant

import (
	"math"
	"math/rand"

	"booksim/pkg/engine"
)

// MarketMakerConfig tunes the quoting behavior.
type MarketMakerConfig struct {
	// BaseSpread is the minimum spread, in price units, around the mid price.
	BaseSpread float64
	// InventoryLimit is the net inventory at which quotes are skewed hardest.
	InventoryLimit int64
	// Levels is how many bid/ask pairs to quote each tick.
	Levels int
	// MinSize and MaxSize bound the random size of each quote.
	MinSize, MaxSize int64
	// VolWindow is how many recent mid prices feed the volatility estimate.
	VolWindow int
	// InventoryRiskFactor widens the spread as inventory nears the limit.
	InventoryRiskFactor float64
	// VolSensitivity scales how much volatility widens the spread.
	VolSensitivity float64
}

func DefaultMarketMakerConfig() MarketMakerConfig {
	return MarketMakerConfig{
		BaseSpread:          1.0,
		InventoryLimit:      100,
		Levels:              3,
		MinSize:             5,
		MaxSize:             15,
		VolWindow:           10,
		InventoryRiskFactor: 0.05,
		VolSensitivity:      0.5,
	}
}

// MarketMaker quotes both sides of the book around the mid price. Each tick
// it pulls all of its resting quotes, re-estimates volatility from a rolling
// mid-price window, widens the spread for volatility and inventory risk, and
// lays out fresh levels. Fills move its inventory, which skews subsequent
// quotes away from the accumulating side.
type MarketMaker struct {
	name string
	cfg  MarketMakerConfig
	rng  *rand.Rand

	inventory int64
	history   []float64
	active    map[uint64]struct{}
}

func NewMarketMaker(name string, cfg MarketMakerConfig, rng *rand.Rand) *MarketMaker {
	return &MarketMaker{
		name:   name,
		cfg:    cfg,
		rng:    rng,
		active: make(map[uint64]struct{}),
	}
}

func (m *MarketMaker) Name() string { return m.name }

// Act refreshes all quotes. Called once per tick by the driver.
func (m *MarketMaker) Act(x Exchange) {
	m.cancelAll(x)

	mid := x.MidPrice()
	if mid <= 0 {
		return
	}
	m.pushMid(mid)

	spread := m.spread(m.volatility())
	m.placeQuotes(x, mid, spread)
}

// HandleFill updates inventory from executions of this maker's quotes.
func (m *MarketMaker) HandleFill(f engine.Fill) {
	switch f.Side {
	case engine.Buy:
		m.inventory += f.Qty
	case engine.Sell:
		m.inventory -= f.Qty
	}
	if f.Remaining == 0 {
		delete(m.active, f.OrderID)
	}
}

// Inventory returns the current net position (bought minus sold).
func (m *MarketMaker) Inventory() int64 { return m.inventory }

func (m *MarketMaker) cancelAll(x Exchange) {
	for id := range m.active {
		x.Cancel(id)
		delete(m.active, id)
	}
}

func (m *MarketMaker) pushMid(mid float64) {
	m.history = append(m.history, mid)
	if len(m.history) > m.cfg.VolWindow {
		m.history = m.history[1:]
	}
}

// volatility is the population standard deviation of the recent mid prices,
// zero until there are at least two samples.
func (m *MarketMaker) volatility() float64 {
	n := len(m.history)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, p := range m.history {
		sum += p
	}
	mean := sum / float64(n)
	var ss float64
	for _, p := range m.history {
		d := p - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// spread widens from the base with volatility and with inventory pressure.
func (m *MarketMaker) spread(vol float64) float64 {
	volComponent := m.cfg.VolSensitivity * vol
	invFactor := math.Abs(float64(m.inventory)) / float64(m.cfg.InventoryLimit)
	invComponent := invFactor * m.cfg.InventoryRiskFactor * m.cfg.BaseSpread
	return m.cfg.BaseSpread + volComponent + invComponent
}

func (m *MarketMaker) placeQuotes(x Exchange, mid, spread float64) {
	half := spread / 2
	for level := 0; level < m.cfg.Levels; level++ {
		offset := half + float64(level)*(spread/float64(m.cfg.Levels))

		bid := round2(mid - offset)
		ask := round2(mid + offset)

		// Skew quotes away from the side inventory is piling up on.
		if m.inventory > 0 {
			bid -= float64(m.inventory) / float64(m.cfg.InventoryLimit) * 0.1
		} else if m.inventory < 0 {
			ask += float64(-m.inventory) / float64(m.cfg.InventoryLimit) * 0.1
		}

		size := m.cfg.MinSize + m.rng.Int63n(m.cfg.MaxSize-m.cfg.MinSize+1)

		if bid > 0 {
			if id, err := x.Submit(engine.Buy, engine.Limit, bid, size, m.name); err == nil {
				m.active[id] = struct{}{}
			}
		}
		if id, err := x.Submit(engine.Sell, engine.Limit, ask, size, m.name); err == nil {
			m.active[id] = struct{}{}
		}
	}
}
