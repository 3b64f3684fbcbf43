package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksim/params"
	"booksim/pkg/api"
	"booksim/pkg/engine"
	"booksim/pkg/participant"
	"booksim/pkg/sim"
	"booksim/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sugar.Infow("sim_config",
		"seed", seed,
		"tick_interval_ms", cfg.Sim.TickInterval.Milliseconds(),
		"default_price", cfg.Engine.DefaultPrice)

	// ---- Engine ----
	book := engine.NewBook(cfg.Engine.DefaultPrice)

	// ---- Participants ----
	// One market maker provides two-sided liquidity; three noise traders with
	// different arrival rates and aggression consume it. Each gets its own
	// rng stream so runs are reproducible under a fixed seed.
	clock := util.RealClock{}
	rng := func(offset int64) *rand.Rand { return rand.New(rand.NewSource(seed + offset)) }

	participants := []participant.Participant{
		participant.NewMarketMaker("MM1", participant.DefaultMarketMakerConfig(), rng(1)),
		participant.NewRandomTrader("AggressiveTrader", participant.RandomTraderConfig{
			MeanArrival:     3 * time.Second,
			MarketOrderProb: 0.4,
			MaxOrderSize:    30,
			PriceRangeBps:   30,
		}, clock, rng(2)),
		participant.NewRandomTrader("PassiveTrader", participant.RandomTraderConfig{
			MeanArrival:     8 * time.Second,
			MarketOrderProb: 0.2,
			MaxOrderSize:    20,
			PriceRangeBps:   15,
		}, clock, rng(3)),
		participant.NewRandomTrader("SmallTrader", participant.RandomTraderConfig{
			MeanArrival:     2 * time.Second,
			MarketOrderProb: 0.8,
			MaxOrderSize:    10,
			PriceRangeBps:   10,
		}, clock, rng(4)),
	}

	runner := sim.NewRunner(book, participants, clock, cfg.Sim.TickInterval, cfg.Sim.ProgressEvery, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	apiServer := api.NewServer(book, cfg.API.AllowedOrigins, sugar)
	go func() {
		if err := apiServer.Start(cfg.API.Addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// Stream state out: depth after every tick, each execution as it happens.
	runner.OnTick = apiServer.BroadcastBook
	book.OnTrade = func(t engine.Trade) {
		apiServer.BroadcastTrade(t)
	}

	runner.Run(ctx)
}
