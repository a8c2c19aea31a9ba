package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medstore/m/domain"
)

const DefaultRecentLimit = 100

const saleColumns = `sale_id, bill_id, COALESCE(med_id, 0) AS med_id, COALESCE(med_name, '') AS med_name,
	COALESCE(quantity, 0) AS quantity, COALESCE(price, 0) AS price, COALESCE(total, 0) AS total,
	COALESCE(sale_date, '') AS sale_date`

// Ledger answers read-only questions about committed sales.
type Ledger struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Report is a list of sales with the sum of their line totals.
type Report struct {
	Sales []domain.SaleRecord
	Total decimal.Decimal
}

// ListRecent returns the latest limit sales, newest first.
func (l *Ledger) ListRecent(ctx context.Context, limit int) (Report, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return l.report(ctx, `ORDER BY sale_date DESC, sale_id DESC LIMIT ?`, limit)
}

// ListByDateRange returns the sales whose date falls within [from, to],
// newest first. Either bound may be empty.
func (l *Ledger) ListByDateRange(ctx context.Context, from, to string) (Report, error) {
	var (
		args    []any
		clauses []string
	)

	from = strings.TrimSpace(from)
	if from != "" {
		if _, err := time.Parse(domain.DateLayout, from); err != nil {
			return Report{}, domain.NewValidationError("from", "must be in YYYY-MM-DD format")
		}
		args = append(args, from)
		clauses = append(clauses, "substr(sale_date, 1, 10) >= ?")
	}

	to = strings.TrimSpace(to)
	if to != "" {
		if _, err := time.Parse(domain.DateLayout, to); err != nil {
			return Report{}, domain.NewValidationError("to", "must be in YYYY-MM-DD format")
		}
		args = append(args, to)
		clauses = append(clauses, "substr(sale_date, 1, 10) <= ?")
	}

	clause := ""
	if len(clauses) > 0 {
		clause = "WHERE " + strings.Join(clauses, " AND ") + " "
	}
	return l.report(ctx, clause+"ORDER BY sale_date DESC, sale_id DESC", args...)
}

// Bill returns a committed bill together with its sale lines.
func (l *Ledger) Bill(ctx context.Context, id int64) (domain.BillSummary, []domain.SaleRecord, error) {
	var summary domain.BillSummary
	err := l.db.GetContext(ctx, &summary, l.db.Rebind(`SELECT bill_id, COALESCE(customer_name, '') AS customer_name,
		COALESCE(total_amount, 0) AS total_amount, COALESCE(bill_date, '') AS bill_date
		FROM bills WHERE bill_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BillSummary{}, nil, &domain.NotFoundError{Entity: "bill", ID: id}
	}
	if err != nil {
		return domain.BillSummary{}, nil, fmt.Errorf("unable to load bill %d: %w", id, err)
	}

	sales := []domain.SaleRecord{}
	if err := l.db.SelectContext(ctx, &sales, l.db.Rebind(`SELECT `+saleColumns+` FROM sales WHERE bill_id = ? ORDER BY sale_id`), id); err != nil {
		return domain.BillSummary{}, nil, fmt.Errorf("unable to load sale items for bill %d: %w", id, err)
	}
	return summary, sales, nil
}

func (l *Ledger) report(ctx context.Context, clause string, args ...any) (Report, error) {
	sales := []domain.SaleRecord{}
	query := l.db.Rebind(`SELECT ` + saleColumns + ` FROM sales ` + clause)
	if err := l.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return Report{}, fmt.Errorf("unable to fetch sales report: %w", err)
	}
	return Report{Sales: sales, Total: domain.SumLineTotals(sales)}, nil
}
