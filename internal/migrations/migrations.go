package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"medstore/m/internal/database"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
		med_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		company TEXT,
		category TEXT,
		purchase_price REAL,
		sale_price REAL,
		quantity INTEGER CHECK (quantity >= 0),
		expiry_date TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS bills (
		bill_id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name TEXT,
		total_amount REAL,
		bill_date TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		sale_id INTEGER PRIMARY KEY AUTOINCREMENT,
		med_id INTEGER,
		med_name TEXT,
		quantity INTEGER,
		price REAL,
		total REAL,
		sale_date TEXT,
		bill_id INTEGER REFERENCES bills(bill_id),
		FOREIGN KEY (med_id) REFERENCES medicines(med_id)
	);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
		med_id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		company TEXT,
		category TEXT,
		purchase_price NUMERIC(12,2),
		sale_price NUMERIC(12,2),
		quantity BIGINT CHECK (quantity >= 0),
		expiry_date TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS bills (
		bill_id BIGSERIAL PRIMARY KEY,
		customer_name TEXT,
		total_amount NUMERIC(14,2),
		bill_date TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS sales (
		sale_id BIGSERIAL PRIMARY KEY,
		med_id BIGINT REFERENCES medicines(med_id),
		med_name TEXT,
		quantity BIGINT,
		price NUMERIC(12,2),
		total NUMERIC(14,2),
		sale_date TEXT
	);`,
	`ALTER TABLE sales ADD COLUMN IF NOT EXISTS bill_id BIGINT REFERENCES bills(bill_id);`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_bill_id ON sales (bill_id);`,
	`CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines (name);`,
}

// Run creates the schema if it does not exist yet. Databases created by older
// versions of the tool are upgraded in place.
func Run(db *sqlx.DB) error {
	schema := postgresSchema
	if database.IsSQLite(db) {
		schema = sqliteSchema
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	if database.IsSQLite(db) {
		if err := addSQLiteColumn(db, "sales", "bill_id", "INTEGER REFERENCES bills(bill_id)"); err != nil {
			return err
		}
	}

	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SQLite has no ADD COLUMN IF NOT EXISTS.
func addSQLiteColumn(db *sqlx.DB, table, column, definition string) error {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition)); err != nil {
		return fmt.Errorf("migration failed: add %s.%s: %w", table, column, err)
	}
	return nil
}
