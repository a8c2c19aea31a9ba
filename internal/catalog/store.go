package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medstore/m/domain"
)

const medicineColumns = `med_id, name, COALESCE(company, '') AS company, COALESCE(category, '') AS category,
	COALESCE(purchase_price, 0) AS purchase_price, COALESCE(sale_price, 0) AS sale_price,
	COALESCE(quantity, 0) AS quantity, COALESCE(expiry_date, '') AS expiry_date`

// Store is the authoritative source of current stock and pricing.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

func New(db *sqlx.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log.Named("catalog")}
}

// PriceChange reports a sale price update.
type PriceChange struct {
	MedicineID int64
	Name       string
	Previous   decimal.Decimal
	Current    decimal.Decimal
}

// AddMedicine stores a new medicine and returns its id.
func (s *Store) AddMedicine(ctx context.Context, m domain.NewMedicine) (int64, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := validateMedicine(m); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO medicines (name, company, category, purchase_price, sale_price, quantity, expiry_date)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING med_id`),
		m.Name, m.Company, m.Category, m.PurchasePrice, m.SalePrice, m.Quantity, m.ExpiryDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add medicine: %w", err)
	}

	s.log.Info("medicine added", zap.Int64("med_id", id), zap.String("name", m.Name), zap.Int64("quantity", m.Quantity))
	return id, nil
}

// Get returns the medicine with the given id.
func (s *Store) Get(ctx context.Context, id int64) (domain.Medicine, error) {
	return getMedicine(ctx, s.db, id)
}

func getMedicine(ctx context.Context, q sqlx.QueryerContext, id int64) (domain.Medicine, error) {
	var m domain.Medicine
	err := sqlx.GetContext(ctx, q, &m, sqlx.Rebind(sqlx.BindType(driverName(q)), `SELECT `+medicineColumns+` FROM medicines WHERE med_id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, &domain.NotFoundError{Entity: "medicine", ID: id}
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to load medicine %d: %w", id, err)
	}
	return m, nil
}

// UpdateSalePrice overwrites the sale price of a medicine with the price typed
// by the operator and returns the previous price.
func (s *Store) UpdateSalePrice(ctx context.Context, id int64, rawPrice string) (PriceChange, error) {
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return PriceChange{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return PriceChange{}, fmt.Errorf("unable to start rate update: %w", err)
	}
	defer tx.Rollback()

	current, err := getMedicine(ctx, tx, id)
	if err != nil {
		return PriceChange{}, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE medicines SET sale_price = ? WHERE med_id = ?`), price, id); err != nil {
		return PriceChange{}, fmt.Errorf("failed to update rate: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return PriceChange{}, fmt.Errorf("failed to update rate: %w", err)
	}

	change := PriceChange{MedicineID: id, Name: current.Name, Previous: current.SalePrice, Current: price}
	s.log.Info("sale price updated",
		zap.Int64("med_id", id),
		zap.String("previous", change.Previous.String()),
		zap.String("current", change.Current.String()))
	return change, nil
}

// DecrementStock reduces the quantity of a medicine inside tx. The update is
// guarded so the quantity never drops below zero.
func (s *Store) DecrementStock(ctx context.Context, tx *sqlx.Tx, id, amount int64) error {
	if amount <= 0 {
		return domain.NewValidationError("quantity", "must be greater than zero")
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE medicines SET quantity = quantity - ? WHERE med_id = ? AND quantity >= ?`), amount, id, amount)
	if err != nil {
		return fmt.Errorf("failed to update stock for medicine %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update stock for medicine %d: %w", id, err)
	}
	if affected == 1 {
		return nil
	}

	current, err := getMedicine(ctx, tx, id)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{MedicineID: id, Name: current.Name, Requested: amount, Available: current.Quantity}
}

// ListLowStock returns the medicines whose quantity is below threshold, lowest first.
func (s *Store) ListLowStock(ctx context.Context, threshold int64) ([]domain.Medicine, error) {
	return s.selectMedicines(ctx, `WHERE COALESCE(quantity, 0) < ? ORDER BY quantity ASC, name`, threshold)
}

// Search matches term case-insensitively against name or category. An empty
// term returns the whole catalog.
func (s *Store) Search(ctx context.Context, term string) ([]domain.Medicine, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.All(ctx)
	}
	like := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.selectMedicines(ctx, `WHERE LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(category, '')) LIKE ? ESCAPE '\' ORDER BY name`, like, like)
}

// All returns the full catalog ordered by name.
func (s *Store) All(ctx context.Context) ([]domain.Medicine, error) {
	return s.selectMedicines(ctx, `ORDER BY name`)
}

// InStock returns the medicines that can currently be billed.
func (s *Store) InStock(ctx context.Context) ([]domain.Medicine, error) {
	return s.selectMedicines(ctx, `WHERE quantity > 0 ORDER BY name`)
}

// StockLevels returns the catalog ordered by quantity, lowest first.
func (s *Store) StockLevels(ctx context.Context) ([]domain.Medicine, error) {
	return s.selectMedicines(ctx, `ORDER BY quantity ASC, name`)
}

func (s *Store) selectMedicines(ctx context.Context, clause string, args ...any) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	query := s.db.Rebind(`SELECT ` + medicineColumns + ` FROM medicines ` + clause)
	if err := s.db.SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, fmt.Errorf("unable to list medicines: %w", err)
	}
	return medicines, nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func driverName(q sqlx.QueryerContext) string {
	switch v := q.(type) {
	case *sqlx.DB:
		return v.DriverName()
	case *sqlx.Tx:
		return v.DriverName()
	default:
		return ""
	}
}
