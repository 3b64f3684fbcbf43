package api

import (
	"time"

	"booksim/pkg/engine"
)

// aggregateCandles buckets executions into fixed OHLCV bars. Trades are
// already in time order (the engine appends them as they happen), so one
// pass suffices. Buckets with no trades are omitted.
func aggregateCandles(trades []engine.Trade, interval time.Duration) []Candle {
	if len(trades) == 0 || interval <= 0 {
		return []Candle{}
	}

	intervalMs := interval.Milliseconds()
	var out []Candle
	var cur *Candle

	for _, t := range trades {
		ms := t.Time.UnixMilli()
		start := ms - ms%intervalMs

		if cur == nil || start != cur.Start {
			out = append(out, Candle{
				Start: start,
				End:   start + intervalMs,
				Open:  t.Price,
				High:  t.Price,
				Low:   t.Price,
				Close: t.Price,
			})
			cur = &out[len(out)-1]
		}

		if t.Price > cur.High {
			cur.High = t.Price
		}
		if t.Price < cur.Low {
			cur.Low = t.Price
		}
		cur.Close = t.Price
		cur.Volume += t.Qty
		cur.Count++
	}

	return out
}
