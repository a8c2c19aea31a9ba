package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration values.
type Config struct {
	AppName     string
	Environment string

	DatabaseDriver string
	DatabaseDSN    string

	LowStockThreshold int64
	DefaultCustomer   string
	RecentSalesLimit  int
	BillDir           string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and an optional .env
// file, falling back to defaults that match a fresh single-till install.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_NAME", "medstore"),
		Environment:       getenv("ENVIRONMENT", "development"),
		DatabaseDriver:    normalizeDriver(getenv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:       getenv("DATABASE_DSN", "medical_store.db"),
		LowStockThreshold: getenvInt64("LOW_STOCK_THRESHOLD", 10),
		DefaultCustomer:   getenv("DEFAULT_CUSTOMER", "Walk-in Customer"),
		RecentSalesLimit:  int(getenvInt64("RECENT_SALES_LIMIT", 100)),
		BillDir:           getenv("BILL_DIR", "."),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "console"),
	}

	if cfg.LowStockThreshold < 0 {
		log.Printf("invalid LOW_STOCK_THRESHOLD value %d, defaulting to 10", cfg.LowStockThreshold)
		cfg.LowStockThreshold = 10
	}
	if cfg.RecentSalesLimit <= 0 {
		log.Printf("invalid RECENT_SALES_LIMIT value %d, defaulting to 100", cfg.RecentSalesLimit)
		cfg.RecentSalesLimit = 100
	}

	return cfg
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pgx":
		return DriverPostgres
	case "sqlite", "sqlite3", "":
		return DriverSQLite
	default:
		log.Printf("unknown DATABASE_DRIVER %q, defaulting to %s", raw, DriverSQLite)
		return DriverSQLite
	}
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("invalid %s value %q, defaulting to %d", key, raw, fallback)
		return fallback
	}
	return value
}
