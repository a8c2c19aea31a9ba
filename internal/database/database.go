package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"medstore/m/internal/config"
)

// Connect opens the store database for the given driver ("sqlite" or "postgres").
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case config.DriverSQLite:
		db, err := sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", dsn, err)
		}
		// A single connection serialises writers and keeps in-memory databases alive.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return db, nil
	case config.DriverPostgres:
		db, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres database: %w", err)
		}
		db.SetMaxOpenConns(4)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// IsSQLite reports whether db was opened with the SQLite driver.
func IsSQLite(db *sqlx.DB) bool {
	return db.DriverName() == "sqlite"
}
