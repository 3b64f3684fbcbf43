package participant

import (
	"math/rand"
	"testing"
	"time"

	"booksim/pkg/engine"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.t.Add(d)
	return ch
}
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func defaultTraderConfig() RandomTraderConfig {
	return RandomTraderConfig{
		MeanArrival:     5 * time.Second,
		MarketOrderProb: 0.3,
		MaxOrderSize:    50,
		PriceRangeBps:   20,
	}
}

func newTrader(cfg RandomTraderConfig, clk *fakeClock, seed int64) *RandomTrader {
	return NewRandomTrader("noise", cfg, clk, rand.New(rand.NewSource(seed)))
}

func TestOrderSizeBounds(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	rt := newTrader(defaultTraderConfig(), clk, 1)

	for i := 0; i < 1000; i++ {
		size := rt.orderSize()
		if size < 1 || size > rt.cfg.MaxOrderSize {
			t.Fatalf("size %d out of [1,%d]", size, rt.cfg.MaxOrderSize)
		}
	}
}

func TestLimitPriceStaysOnOwnSideOfMid(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	rt := newTrader(defaultTraderConfig(), clk, 1)
	const mid = 100.0
	maxAdj := rt.cfg.PriceRangeBps / 10000 * mid

	for i := 0; i < 500; i++ {
		buy := rt.limitPrice(mid, engine.Buy)
		if buy > mid || buy < mid-maxAdj-0.01 {
			t.Fatalf("buy price %v outside [%v,%v]", buy, mid-maxAdj, mid)
		}
		sell := rt.limitPrice(mid, engine.Sell)
		if sell < mid || sell > mid+maxAdj+0.01 {
			t.Fatalf("sell price %v outside [%v,%v]", sell, mid, mid+maxAdj)
		}
	}
}

func TestBetaSampleRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := betaSample(rng, 2, 5)
		if v < 0 || v > 1 {
			t.Fatalf("beta sample %v outside [0,1]", v)
		}
	}
}

func TestShouldTradeFollowsElapsedTime(t *testing.T) {
	cfg := defaultTraderConfig()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rt := newTrader(cfg, clk, 1)

	// No time elapsed: arrival probability is zero.
	for i := 0; i < 100; i++ {
		if rt.shouldTrade() {
			t.Fatal("trade with zero elapsed time")
		}
	}

	// Ages past the mean arrival time the probability is essentially one.
	clk.advance(1000 * cfg.MeanArrival)
	fired := 0
	for i := 0; i < 100; i++ {
		if rt.shouldTrade() {
			fired++
		}
	}
	if fired < 99 {
		t.Fatalf("expected near-certain arrival after long wait, fired %d/100", fired)
	}
}

func TestActPlacesLimitOrder(t *testing.T) {
	cfg := defaultTraderConfig()
	cfg.MarketOrderProb = 0 // force limit orders
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rt := newTrader(cfg, clk, 1)

	book := engine.NewBook(100)
	clk.advance(1000 * cfg.MeanArrival)

	rt.Act(book)

	if n := book.RestingOrders(); n != 1 {
		t.Fatalf("expected 1 resting order, got %d", n)
	}
	if got := rt.lastTrade; !got.Equal(clk.Now()) {
		t.Error("lastTrade not refreshed after acting")
	}
}

func TestActPlacesMarketOrder(t *testing.T) {
	cfg := defaultTraderConfig()
	cfg.MarketOrderProb = 1 // force market orders
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rt := newTrader(cfg, clk, 1)

	book := engine.NewBook(100)
	book.Submit(engine.Buy, engine.Limit, 99, 100, "maker")
	book.Submit(engine.Sell, engine.Limit, 101, 100, "maker")

	clk.advance(1000 * cfg.MeanArrival)
	rt.Act(book)

	if book.TradeCount() != 1 {
		t.Fatalf("expected the market order to trade, got %d trades", book.TradeCount())
	}
	// Market orders never rest: only the two maker quotes remain (one now partial).
	if n := book.RestingOrders(); n != 2 {
		t.Errorf("expected 2 resting maker orders, got %d", n)
	}
}

func TestActIdleBeforeArrival(t *testing.T) {
	cfg := defaultTraderConfig()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	rt := newTrader(cfg, clk, 1)

	book := engine.NewBook(100)
	rt.Act(book) // zero elapsed time, must not trade

	if n := book.RestingOrders(); n != 0 {
		t.Errorf("expected no orders before first arrival, got %d", n)
	}
}
