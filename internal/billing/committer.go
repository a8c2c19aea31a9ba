package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"medstore/m/domain"
	"medstore/m/internal/clock"
)

// StockDecrementer reduces stock inside a caller-owned transaction.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, tx *sqlx.Tx, id, amount int64) error
}

// Committer turns a bill into sales history and applies it to stock as a
// single transaction.
type Committer struct {
	db              *sqlx.DB
	stock           StockDecrementer
	clock           clock.Clock
	log             *zap.Logger
	defaultCustomer string
}

func NewCommitter(db *sqlx.DB, stock StockDecrementer, clk clock.Clock, log *zap.Logger, defaultCustomer string) *Committer {
	return &Committer{
		db:              db,
		stock:           stock,
		clock:           clk,
		log:             log.Named("billing.committer"),
		defaultCustomer: defaultCustomer,
	}
}

// Commit persists one bill summary and one sale per line and decrements the
// stock of every medicine on the bill. Demand is checked per medicine across
// all of its lines, so two lines that fit individually but not together are
// rejected. Either everything is written or nothing is.
func (c *Committer) Commit(ctx context.Context, bill Bill, customer string) (domain.BillSummary, error) {
	if len(bill.Items) == 0 {
		return domain.BillSummary{}, domain.ErrEmptyBill
	}
	for _, item := range bill.Items {
		if item.Quantity <= 0 {
			return domain.BillSummary{}, &domain.CommitFailedError{
				Cause: domain.NewValidationError("quantity", fmt.Sprintf("of %s must be greater than zero", item.Name)),
			}
		}
	}

	customer = strings.TrimSpace(customer)
	if customer == "" {
		customer = c.defaultCustomer
	}
	summary := domain.BillSummary{
		CustomerName: customer,
		TotalAmount:  bill.Total(),
		BillDate:     c.clock.Now().Format(domain.TimestampLayout),
	}

	if err := c.commit(ctx, bill, &summary); err != nil {
		c.log.Warn("bill rolled back",
			zap.String("customer", customer),
			zap.Int("lines", len(bill.Items)),
			zap.Error(err))
		return domain.BillSummary{}, &domain.CommitFailedError{Cause: err}
	}

	c.log.Info("bill committed",
		zap.Int64("bill_id", summary.ID),
		zap.String("customer", customer),
		zap.String("total", summary.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(bill.Items)))
	return summary, nil
}

func (c *Committer) commit(ctx context.Context, bill Bill, summary *domain.BillSummary) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to start sale: %w", err)
	}
	defer tx.Rollback()

	order, demand := bill.Demand()
	for _, id := range order {
		if err := c.stock.DecrementStock(ctx, tx, id, demand[id]); err != nil {
			return err
		}
	}

	err = tx.QueryRowxContext(ctx, tx.Rebind(`INSERT INTO bills (customer_name, total_amount, bill_date) VALUES (?, ?, ?) RETURNING bill_id`),
		summary.CustomerName, summary.TotalAmount, summary.BillDate).Scan(&summary.ID)
	if err != nil {
		return fmt.Errorf("unable to create bill: %w", err)
	}

	insertSale := tx.Rebind(`INSERT INTO sales (med_id, med_name, quantity, price, total, sale_date, bill_id) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, item := range bill.Items {
		if _, err := tx.ExecContext(ctx, insertSale,
			item.MedicineID, item.Name, item.Quantity, item.UnitPrice, item.Total(), summary.BillDate, summary.ID); err != nil {
			return fmt.Errorf("unable to save sale of %s: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to finalize sale: %w", err)
	}
	return nil
}
