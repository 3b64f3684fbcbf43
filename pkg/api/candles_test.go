package api

import (
	"testing"
	"time"

	"booksim/pkg/engine"
)

func tradeAt(t time.Time, price float64, qty int64) engine.Trade {
	return engine.Trade{Time: t, Price: price, Qty: qty, Side: engine.Buy}
}

func TestAggregateCandlesEmpty(t *testing.T) {
	if got := aggregateCandles(nil, time.Minute); len(got) != 0 {
		t.Fatalf("expected no candles, got %d", len(got))
	}
}

func TestAggregateCandlesSingleBucket(t *testing.T) {
	base := time.UnixMilli(1_700_000_040_000) // bucket-aligned for 1m
	trades := []engine.Trade{
		tradeAt(base, 100, 5),
		tradeAt(base.Add(10*time.Second), 103, 2),
		tradeAt(base.Add(20*time.Second), 98, 3),
		tradeAt(base.Add(30*time.Second), 101, 1),
	}

	candles := aggregateCandles(trades, time.Minute)
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}

	c := candles[0]
	if c.Open != 100 || c.High != 103 || c.Low != 98 || c.Close != 101 {
		t.Errorf("unexpected OHLC: %+v", c)
	}
	if c.Volume != 11 || c.Count != 4 {
		t.Errorf("unexpected volume/count: %+v", c)
	}
	if c.Start != base.UnixMilli() || c.End != base.Add(time.Minute).UnixMilli() {
		t.Errorf("unexpected bounds: %+v", c)
	}
}

func TestAggregateCandlesSplitsBuckets(t *testing.T) {
	base := time.UnixMilli(1_700_000_040_000)
	trades := []engine.Trade{
		tradeAt(base, 100, 1),
		tradeAt(base.Add(59*time.Second), 102, 1),
		tradeAt(base.Add(61*time.Second), 105, 2),
	}

	candles := aggregateCandles(trades, time.Minute)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 102 || candles[0].Count != 2 {
		t.Errorf("first candle wrong: %+v", candles[0])
	}
	if candles[1].Open != 105 || candles[1].Volume != 2 {
		t.Errorf("second candle wrong: %+v", candles[1])
	}
}

func TestAggregateCandlesSkipsEmptyBuckets(t *testing.T) {
	base := time.UnixMilli(1_700_000_040_000)
	trades := []engine.Trade{
		tradeAt(base, 100, 1),
		tradeAt(base.Add(10*time.Minute), 110, 1),
	}

	candles := aggregateCandles(trades, time.Minute)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles with gap omitted, got %d", len(candles))
	}
}
