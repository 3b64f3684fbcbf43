package participant

import (
	"math"
	"math/rand"
	"time"

	"booksim/pkg/engine"
	"booksim/pkg/util"
)

// sizeAlpha shapes the power-law size distribution: many small orders, few
// large ones.
const sizeAlpha = 2.5

// RandomTraderConfig tunes the noise-trading behavior.
type RandomTraderConfig struct {
	// MeanArrival is the average time between trades (Poisson process).
	MeanArrival time.Duration
	// MarketOrderProb is the probability a generated order is a market order.
	MarketOrderProb float64
	// MaxOrderSize caps the power-law distributed order size.
	MaxOrderSize int64
	// PriceRangeBps bounds how far, in basis points, a limit price may sit
	// from the mid.
	PriceRangeBps float64
}

// RandomTrader submits uninformed flow: arrivals follow a Poisson process,
// sizes a power law, and limit prices cluster near the touch via a beta
// distribution. A configurable fraction of the flow goes out as market
// orders.
type RandomTrader struct {
	name  string
	cfg   RandomTraderConfig
	clock util.Clock
	rng   *rand.Rand

	lastTrade time.Time
}

func NewRandomTrader(name string, cfg RandomTraderConfig, clock util.Clock, rng *rand.Rand) *RandomTrader {
	return &RandomTrader{
		name:      name,
		cfg:       cfg,
		clock:     clock,
		rng:       rng,
		lastTrade: clock.Now(),
	}
}

func (r *RandomTrader) Name() string { return r.name }

// Act maybe places one order, depending on how much time has passed since
// the last one.
func (r *RandomTrader) Act(x Exchange) {
	if !r.shouldTrade() {
		return
	}

	mid := x.MidPrice()
	if mid <= 0 {
		return
	}

	side := engine.Buy
	if r.rng.Intn(2) == 0 {
		side = engine.Sell
	}
	size := r.orderSize()

	if r.rng.Float64() < r.cfg.MarketOrderProb {
		// Rejection on an empty opposite side is an ordinary outcome here.
		_, _ = x.Submit(side, engine.Market, 0, size, r.name)
	} else {
		_, _ = x.Submit(side, engine.Limit, r.limitPrice(mid, side), size, r.name)
	}

	r.lastTrade = r.clock.Now()
}

// shouldTrade draws from the exponential arrival process: the longer since
// the last trade, the likelier a new one.
func (r *RandomTrader) shouldTrade() bool {
	since := r.clock.Now().Sub(r.lastTrade)
	p := 1 - math.Exp(-since.Seconds()/r.cfg.MeanArrival.Seconds())
	return r.rng.Float64() < p
}

// orderSize samples a power-law size in [1, MaxOrderSize].
func (r *RandomTrader) orderSize() int64 {
	u := math.Pow(r.rng.Float64(), 1/sizeAlpha)
	size := int64(u * float64(r.cfg.MaxOrderSize))
	if size < 1 {
		return 1
	}
	return size
}

// limitPrice offsets the mid by a beta-distributed number of basis points so
// prices cluster near the best bid/ask. Buys price below the mid, sells
// above.
func (r *RandomTrader) limitPrice(mid float64, side engine.Side) float64 {
	a, b := 2.0, 5.0
	if side == engine.Sell {
		a, b = 5.0, 2.0
	}

	deviationBps := betaSample(r.rng, a, b) * r.cfg.PriceRangeBps
	adjustment := deviationBps / 10000 * mid

	if side == engine.Buy {
		return round2(mid - adjustment)
	}
	return round2(mid + adjustment)
}

// betaSample draws from Beta(a, b) using Jöhnk's method, which is plenty for
// the small shape parameters used here.
func betaSample(rng *rand.Rand, a, b float64) float64 {
	for {
		x := math.Pow(rng.Float64(), 1/a)
		y := math.Pow(rng.Float64(), 1/b)
		if s := x + y; s > 0 && s <= 1 {
			return x / s
		}
	}
}
