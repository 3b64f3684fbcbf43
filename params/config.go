package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Engine struct {
	// DefaultPrice seeds the mid-price fallback before any trade exists.
	DefaultPrice float64
}

type Sim struct {
	// TickInterval is the cooperative scheduling period: every participant
	// acts once per tick, strictly serialized.
	TickInterval time.Duration
	// Seed drives all strategy randomness. Zero means seed from wall time.
	Seed int64
	// ProgressEvery controls how many ticks pass between progress log lines.
	ProgressEvery int
}

type API struct {
	Addr           string
	AllowedOrigins []string
}

type Config struct {
	Engine  Engine
	Sim     Sim
	API     API
	LogFile string
}

func Default() Config {
	return Config{
		Engine: Engine{
			DefaultPrice: 100,
		},
		Sim: Sim{
			TickInterval:  1 * time.Second,
			Seed:          0,
			ProgressEvery: 10,
		},
		API: API{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		LogFile: "data/sim.log",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if tick := os.Getenv("SIM_TICK_MS"); tick != "" {
		if ms, err := strconv.Atoi(tick); err == nil && ms > 0 {
			cfg.Sim.TickInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if seed := os.Getenv("SIM_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Sim.Seed = v
		}
	}
	if every := os.Getenv("SIM_PROGRESS_EVERY"); every != "" {
		if v, err := strconv.Atoi(every); err == nil && v > 0 {
			cfg.Sim.ProgressEvery = v
		}
	}
	if price := os.Getenv("ENGINE_DEFAULT_PRICE"); price != "" {
		if v, err := strconv.ParseFloat(price, 64); err == nil && v > 0 {
			cfg.Engine.DefaultPrice = v
		}
	}
	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.API.Addr = addr
	}
	if origins := os.Getenv("API_ALLOWED_ORIGINS"); origins != "" {
		cfg.API.AllowedOrigins = strings.Split(origins, ",")
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}

	return cfg
}
