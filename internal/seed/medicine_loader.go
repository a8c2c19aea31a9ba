package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"medstore/m/internal/catalog"
)

const catalogColumns = 7

// SkippedRow is a CSV line that was not imported.
type SkippedRow struct {
	Line   int
	Reason string
}

// Result summarises a catalog import.
type Result struct {
	Imported int
	Skipped  []SkippedRow
}

// LoadMedicines imports a catalog CSV in the export format. Rows that fail to
// parse or validate are skipped and reported; the remaining rows are inserted
// in a single transaction.
func LoadMedicines(ctx context.Context, db *sqlx.DB, log *zap.Logger, r io.Reader) (Result, error) {
	var result Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		return result, fmt.Errorf("unable to read catalog header: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("unable to start catalog import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO medicines (name, company, category, purchase_price, sale_price, quantity, expiry_date) VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return result, fmt.Errorf("unable to prepare medicine insert: %w", err)
	}
	defer stmt.Close()

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		if len(record) != catalogColumns {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: fmt.Sprintf("expected %d columns, got %d", catalogColumns, len(record))})
			continue
		}

		m, err := catalog.ParseForm(catalog.MedicineForm{
			Name:          record[0],
			Company:       optional(record[1]),
			Category:      optional(record[2]),
			PurchasePrice: optional(record[3]),
			SalePrice:     optional(record[4]),
			Quantity:      optional(record[5]),
			ExpiryDate:    optional(record[6]),
		})
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}

		if _, err := stmt.ExecContext(ctx, m.Name, m.Company, m.Category, m.PurchasePrice, m.SalePrice, m.Quantity, m.ExpiryDate); err != nil {
			return result, fmt.Errorf("unable to insert medicine %s on line %d: %w", m.Name, line, err)
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("unable to commit catalog import: %w", err)
	}

	log.Info("catalog imported", zap.Int("imported", result.Imported), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// Older exports write None for missing values.
func optional(v string) string {
	if strings.TrimSpace(v) == "None" {
		return ""
	}
	return v
}
