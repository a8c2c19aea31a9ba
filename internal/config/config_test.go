package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_NAME", "DATABASE_DRIVER", "DATABASE_DSN", "LOW_STOCK_THRESHOLD", "DEFAULT_CUSTOMER", "RECENT_SALES_LIMIT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "medstore", cfg.AppName)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "medical_store.db", cfg.DatabaseDSN)
	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Equal(t, "Walk-in Customer", cfg.DefaultCustomer)
	assert.Equal(t, 100, cfg.RecentSalesLimit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "PostgreSQL")
	t.Setenv("DATABASE_DSN", "postgres://localhost/medstore")
	t.Setenv("LOW_STOCK_THRESHOLD", "25")
	t.Setenv("DEFAULT_CUSTOMER", "Counter Sale")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/medstore", cfg.DatabaseDSN)
	assert.Equal(t, int64(25), cfg.LowStockThreshold)
	assert.Equal(t, "Counter Sale", cfg.DefaultCustomer)
}

func TestLoadFallsBackOnInvalidNumbers(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "ten")
	t.Setenv("RECENT_SALES_LIMIT", "-4")

	cfg := Load()

	assert.Equal(t, int64(10), cfg.LowStockThreshold)
	assert.Equal(t, 100, cfg.RecentSalesLimit)
}

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"":           DriverSQLite,
		"sqlite3":    DriverSQLite,
		"pgx":        DriverPostgres,
		" postgres ": DriverPostgres,
		"oracle":     DriverSQLite,
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDriver(in), "driver %q", in)
	}
}
