package engine

import (
	"container/heap"
	"math"
	"sort"
	"sync"
	"time"
)

// Book is the matching engine for a single instrument. It owns the two priced
// queues (bids and asks), the live-order index and the append-only trade log,
// and matches under price-time priority.
//
// The whole book is one unit of mutual exclusion: every submit/cancel runs to
// completion under the write lock, so a resting cross is never observable.
// Reads (levels, mid price, trade log) take the read lock and may run
// concurrently with each other.
type Book struct {
	mu sync.RWMutex

	// Heap of distinct level prices per side (O(1) peek of the best price),
	// plus FIFO queues per level for time priority within a price.
	bidHeap maxPriceHeap
	askHeap minPriceHeap
	bids    map[float64][]*Order
	asks    map[float64][]*Order

	// Live orders by id, for O(1) cancel lookup.
	index map[uint64]*Order

	trades    []Trade
	nextID    uint64
	lastPrice float64 // most recent trade price; seeded with the default reference price

	now func() time.Time

	// OnTrade and OnFill, when set, are invoked after a mutation completes
	// and the lock is released, in occurrence order. Set them before the
	// book is in use; they are not guarded.
	OnTrade func(Trade)
	OnFill  func(Fill)
}

// NewBook builds an empty book. defaultPrice seeds the mid-price fallback
// used before any trade has happened.
func NewBook(defaultPrice float64) *Book {
	b := &Book{
		bids:      make(map[float64][]*Order),
		asks:      make(map[float64][]*Order),
		index:     make(map[uint64]*Order),
		lastPrice: defaultPrice,
		now:       time.Now,
	}
	heap.Init(&b.bidHeap)
	heap.Init(&b.askHeap)
	return b
}

// bookEvents collects what a single mutation produced, for dispatch to the
// OnTrade/OnFill hooks outside the lock.
type bookEvents struct {
	trades []Trade
	fills  []Fill
}

// Submit admits one order. The returned id is assigned by the book,
// monotonically increasing, never reused.
//
// Market orders execute immediately against the opposite side and never rest:
// if the opposite side is completely empty the order is rejected with
// ErrNoLiquidity and no state changes; otherwise it is accepted even when
// only partially filled, and the unfilled remainder is dropped.
//
// Limit orders are always accepted (after validation), rest on their side's
// queue and trigger the continuous cross-match loop.
func (b *Book) Submit(side Side, kind Kind, price float64, qty int64, owner string) (uint64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if kind == Limit && (math.IsNaN(price) || math.IsInf(price, 0) || price <= 0) {
		return 0, ErrInvalidPrice
	}

	b.mu.Lock()

	if kind == Market && b.oppositeEmpty(side) {
		b.mu.Unlock()
		return 0, ErrNoLiquidity
	}

	b.nextID++
	o := &Order{ID: b.nextID, Side: side, Kind: kind, Price: price, Qty: qty, Owner: owner, Time: b.now()}

	var ev bookEvents
	if kind == Market {
		b.executeMarket(o, &ev)
	} else {
		b.rest(o)
		b.matchCross(&ev)
	}

	b.mu.Unlock()
	b.dispatch(ev)
	return o.ID, nil
}

// Cancel removes the full remaining quantity of a live order. Unknown ids
// (already filled, already cancelled, never issued) are a no-op returning
// false.
func (b *Book) Cancel(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[id]
	if !ok {
		return false
	}
	delete(b.index, id)

	q := b.sideQueues(o.Side)
	level := q[o.Price]
	for i, ord := range level {
		if ord.ID == id {
			q[o.Price] = append(level[:i], level[i+1:]...)
			break
		}
	}
	if len(q[o.Price]) == 0 {
		delete(q, o.Price)
		b.removeLevel(o.Side, o.Price)
	}
	return true
}

// executeMarket sweeps the opposite side best-price-first. Trades print at
// the resting order's price; the market order's side tags the aggressor.
// Caller holds the lock and has ruled out a completely empty opposite side.
func (b *Book) executeMarket(o *Order, ev *bookEvents) {
	for o.Qty > 0 {
		var price float64
		var ok bool
		if o.Side == Buy {
			price, ok = b.askHeap.peek()
		} else {
			price, ok = b.bidHeap.peek()
		}
		if !ok {
			// Book exhausted mid-sweep: the remainder is simply dropped.
			return
		}

		maker := b.sideQueues(o.Side.Opposite())[price][0]
		n := min(o.Qty, maker.Qty)
		o.Qty -= n
		maker.Qty -= n

		b.recordTrade(price, n, o.Side, ev)
		ev.fills = append(ev.fills, fillFor(maker, price, n), fillFor(o, price, n))

		if maker.Qty == 0 {
			b.unlink(maker)
		}
	}
}

// matchCross runs after every limit insertion: while a live cross exists
// (best bid >= best ask) it executes at the resting ask's price. The trade's
// aggressor tag is the side of the later-arriving order, since that order is
// the one that completed the cross.
func (b *Book) matchCross(ev *bookEvents) {
	for {
		bb, okB := b.bidHeap.peek()
		ba, okA := b.askHeap.peek()
		if !okB || !okA || bb < ba {
			return
		}

		bid := b.bids[bb][0]
		ask := b.asks[ba][0]
		n := min(bid.Qty, ask.Qty)

		aggressor := Sell
		if bid.Time.After(ask.Time) {
			aggressor = Buy
		}

		bid.Qty -= n
		ask.Qty -= n

		b.recordTrade(ba, n, aggressor, ev)
		ev.fills = append(ev.fills, fillFor(bid, ba, n), fillFor(ask, ba, n))

		if bid.Qty == 0 {
			b.unlink(bid)
		}
		if ask.Qty == 0 {
			b.unlink(ask)
		}
	}
}

// rest queues a limit order on its side and indexes it.
func (b *Book) rest(o *Order) {
	q := b.sideQueues(o.Side)
	if len(q[o.Price]) == 0 {
		if o.Side == Buy {
			heap.Push(&b.bidHeap, o.Price)
		} else {
			heap.Push(&b.askHeap, o.Price)
		}
	}
	q[o.Price] = append(q[o.Price], o)
	b.index[o.ID] = o
}

// unlink removes a fully filled order from the head of its level, dropping
// the level itself when it empties.
func (b *Book) unlink(o *Order) {
	delete(b.index, o.ID)
	q := b.sideQueues(o.Side)
	level := q[o.Price][1:]
	if len(level) == 0 {
		delete(q, o.Price)
		b.removeLevel(o.Side, o.Price)
	} else {
		q[o.Price] = level
	}
}

func (b *Book) removeLevel(s Side, price float64) {
	if s == Buy {
		removePrice(&b.bidHeap, b.bidHeap, price)
	} else {
		removePrice(&b.askHeap, b.askHeap, price)
	}
}

func (b *Book) sideQueues(s Side) map[float64][]*Order {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) oppositeEmpty(s Side) bool {
	if s == Buy {
		return b.askHeap.Len() == 0
	}
	return b.bidHeap.Len() == 0
}

func (b *Book) recordTrade(price float64, qty int64, aggressor Side, ev *bookEvents) {
	t := Trade{Time: b.now(), Price: price, Qty: qty, Side: aggressor}
	b.trades = append(b.trades, t)
	b.lastPrice = price
	ev.trades = append(ev.trades, t)
}

// fillFor captures an execution notice. Call after the order's quantity has
// been decremented so Remaining is the post-fill quantity.
func fillFor(o *Order, price float64, qty int64) Fill {
	return Fill{OrderID: o.ID, Owner: o.Owner, Side: o.Side, Price: price, Qty: qty, Remaining: o.Qty}
}

func (b *Book) dispatch(ev bookEvents) {
	if b.OnTrade != nil {
		for _, t := range ev.trades {
			b.OnTrade(t)
		}
	}
	if b.OnFill != nil {
		for _, f := range ev.fills {
			b.OnFill(f)
		}
	}
}

// BidLevels aggregates resting bid quantity per distinct price, best (highest)
// first. Pure read.
func (b *Book) BidLevels() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := aggregateLevels(b.bids)
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price > levels[j].Price })
	return levels
}

// AskLevels aggregates resting ask quantity per distinct price, best (lowest)
// first. Pure read.
func (b *Book) AskLevels() []Level {
	b.mu.RLock()
	defer b.mu.RUnlock()

	levels := aggregateLevels(b.asks)
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
	return levels
}

func aggregateLevels(q map[float64][]*Order) []Level {
	levels := make([]Level, 0, len(q))
	for price, orders := range q {
		var total int64
		for _, o := range orders {
			total += o.Qty
		}
		levels = append(levels, Level{Price: price, Qty: total})
	}
	return levels
}

// MidPrice is the reference price participants quote around: the midpoint of
// the best bid and ask when both sides have liquidity, otherwise the most
// recent trade price (or the configured default before any trade).
func (b *Book) MidPrice() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bb, okB := b.bidHeap.peek()
	ba, okA := b.askHeap.peek()
	if okB && okA {
		return (bb + ba) / 2
	}
	return b.lastPrice
}

// LastPrice returns the most recent trade price, or the default reference
// price if nothing has traded yet.
func (b *Book) LastPrice() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastPrice
}

// Trades returns a copy of the trade log, oldest first.
func (b *Book) Trades() []Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// TradeCount returns the number of recorded trades.
func (b *Book) TradeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.trades)
}

// RestingOrders returns the number of live resting orders.
func (b *Book) RestingOrders() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.index)
}
