// Package sim drives the simulated market: a cooperative tick loop that
// invokes every participant once per tick, strictly serialized, so the engine
// never sees concurrent mutations from strategies.
package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booksim/pkg/engine"
	"booksim/pkg/participant"
	"booksim/pkg/util"
)

// Runner owns the tick loop. It also wires the engine's fill stream to the
// participants: fills are routed by owner name to any participant that
// implements participant.FillHandler.
type Runner struct {
	book          *engine.Book
	participants  []participant.Participant
	clock         util.Clock
	interval      time.Duration
	progressEvery int
	logger        *zap.SugaredLogger

	// OnTick, when set, runs after every completed tick (used to broadcast
	// book state to API clients).
	OnTick func()

	ticks int
}

func NewRunner(book *engine.Book, participants []participant.Participant, clock util.Clock, interval time.Duration, progressEvery int, logger *zap.SugaredLogger) *Runner {
	r := &Runner{
		book:          book,
		participants:  participants,
		clock:         clock,
		interval:      interval,
		progressEvery: progressEvery,
		logger:        logger,
	}

	handlers := make(map[string]participant.FillHandler)
	for _, p := range participants {
		if h, ok := p.(participant.FillHandler); ok {
			handlers[p.Name()] = h
		}
	}
	book.OnFill = func(f engine.Fill) {
		if h, ok := handlers[f.Owner]; ok {
			h.HandleFill(f)
		}
	}

	return r
}

// Step runs one simulated tick: every participant acts exactly once, in
// composition order.
func (r *Runner) Step() {
	for _, p := range r.participants {
		p.Act(r.book)
	}
	r.ticks++
	if r.OnTick != nil {
		r.OnTick()
	}
}

// Ticks returns how many ticks have completed.
func (r *Runner) Ticks() int { return r.ticks }

// Run loops until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Infow("sim_started",
		"participants", len(r.participants),
		"tick_interval_ms", r.interval.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("sim_stopped",
				"ticks", r.ticks,
				"trades", r.book.TradeCount(),
				"resting_orders", r.book.RestingOrders())
			return
		case <-r.clock.After(r.interval):
			r.Step()
			if r.progressEvery > 0 && r.ticks%r.progressEvery == 0 {
				r.logger.Infow("sim_progress",
					"tick", r.ticks,
					"trades", r.book.TradeCount(),
					"mid", r.book.MidPrice(),
					"resting_orders", r.book.RestingOrders())
			}
		}
	}
}
