package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the dashboard settings read from DASHBOARD_* variables.
type Config struct {
	DataPath    string        `env:"DATA_PATH" envDefault:"dashboard/main_data.csv"`
	DSN         string        `env:"DSN"`
	OrdersTable string        `env:"ORDERS_TABLE" envDefault:"orders"`
	Addr        string        `env:"ADDR" envDefault:":8080"`
	Currency    string        `env:"CURRENCY" envDefault:"AUD"`
	Locale      string        `env:"LOCALE" envDefault:"es-CO"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envSeparator:","`
	TopN        int           `env:"TOP_N" envDefault:"10"`
	TopRFM      int           `env:"TOP_RFM" envDefault:"5"`
	Production  bool          `env:"PRODUCTION"`
	Verbose     bool          `env:"VERBOSE" envDefault:"true"`
}

// Load reads an optional .env file, then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] .env not loaded: %v", err)
	}
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DASHBOARD_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TopN <= 0 || cfg.TopRFM <= 0 {
		return Config{}, fmt.Errorf("parse env: DASHBOARD_TOP_N and DASHBOARD_TOP_RFM must be positive")
	}
	return cfg, nil
}
