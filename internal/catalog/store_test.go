package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"medstore/m/domain"
	"medstore/m/internal/config"
	"medstore/m/internal/database"
	"medstore/m/internal/migrations"
)

func setupStore(t *testing.T) (*Store, *sqlx.DB) {
	t.Helper()
	db, err := database.Connect(config.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))
	return New(db, zaptest.NewLogger(t)), db
}

func mustAdd(t *testing.T, s *Store, name, category string, price string, qty int64) int64 {
	t.Helper()
	id, err := s.AddMedicine(context.Background(), domain.NewMedicine{
		Name:      name,
		Company:   "Acme Pharma",
		Category:  category,
		SalePrice: decimal.RequireFromString(price),
		Quantity:  qty,
	})
	require.NoError(t, err)
	return id
}

func TestAddMedicine(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	id, err := s.AddMedicine(ctx, domain.NewMedicine{
		Name:          "  Paracetamol ",
		Company:       "Acme Pharma",
		Category:      "Analgesic",
		PurchasePrice: decimal.RequireFromString("1.25"),
		SalePrice:     decimal.RequireFromString("2.00"),
		Quantity:      50,
		ExpiryDate:    "2026-03-31",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", m.Name)
	assert.Equal(t, "Analgesic", m.Category)
	assert.True(t, m.PurchasePrice.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, m.SalePrice.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, int64(50), m.Quantity)
	assert.Equal(t, "2026-03-31", m.ExpiryDate)

	second := mustAdd(t, s, "Ibuprofen", "Analgesic", "3.5", 20)
	assert.Greater(t, second, id)
}

func TestAddMedicineRejectsInvalid(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input domain.NewMedicine
		field string
	}{
		{"empty name", domain.NewMedicine{Name: "   "}, "name"},
		{"negative quantity", domain.NewMedicine{Name: "Zinc", Quantity: -1}, "quantity"},
		{"negative price", domain.NewMedicine{Name: "Zinc", SalePrice: decimal.NewFromInt(-2)}, "sale_price"},
		{"bad expiry", domain.NewMedicine{Name: "Zinc", ExpiryDate: "31/12/2026"}, "expiry_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddMedicine(ctx, tc.input)
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateSalePrice(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "Paracetamol", "Analgesic", "2.00", 50)

	change, err := s.UpdateSalePrice(ctx, id, "2.75")
	require.NoError(t, err)
	assert.Equal(t, id, change.MedicineID)
	assert.Equal(t, "Paracetamol", change.Name)
	assert.True(t, change.Previous.Equal(decimal.NewFromInt(2)))
	assert.True(t, change.Current.Equal(decimal.RequireFromString("2.75")))

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.SalePrice.Equal(decimal.RequireFromString("2.75")))
	assert.Equal(t, int64(50), m.Quantity)
}

func TestUpdateSalePriceFailures(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "Paracetamol", "Analgesic", "2.00", 50)

	_, err := s.UpdateSalePrice(ctx, id+100, "3")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, id+100, nf.ID)

	_, err = s.UpdateSalePrice(ctx, id, "-1")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.UpdateSalePrice(ctx, id, "two rupees")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.UpdateSalePrice(ctx, id, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].SalePrice.Equal(decimal.NewFromInt(2)))
}

func TestDecrementStock(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "Amoxicillin", "Antibiotic", "6", 12)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.DecrementStock(ctx, tx, id, 5))

	err = s.DecrementStock(ctx, tx, id, 8)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(7), stockErr.Available)
	assert.Equal(t, int64(8), stockErr.Requested)
	assert.Equal(t, "Amoxicillin", stockErr.Name)

	err = s.DecrementStock(ctx, tx, id+1, 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = s.DecrementStock(ctx, tx, id, 0)
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, tx.Commit())

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.Quantity)
}

func TestDecrementStockRolledBack(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "Amoxicillin", "Antibiotic", "6", 12)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.DecrementStock(ctx, tx, id, 12))
	require.NoError(t, tx.Rollback())

	m, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.Quantity)
}

func TestListLowStock(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	mustAdd(t, s, "Paracetamol", "Analgesic", "2", 50)
	mustAdd(t, s, "Insulin", "Hormone", "40", 3)
	mustAdd(t, s, "Cough Syrup", "Syrup", "5", 9)
	mustAdd(t, s, "Bandage", "First Aid", "1", 10)

	low, err := s.ListLowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Insulin", low[0].Name)
	assert.Equal(t, "Cough Syrup", low[1].Name)

	none, err := s.ListLowStock(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	mustAdd(t, s, "Paracetamol", "Analgesic", "2", 50)
	mustAdd(t, s, "Ibuprofen", "analgesic", "3", 20)
	mustAdd(t, s, "Amoxicillin", "Antibiotic", "6", 12)
	mustAdd(t, s, "Vitamin_C", "Supplement", "1", 100)

	got, err := s.Search(ctx, "ANALG")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ibuprofen", got[0].Name)
	assert.Equal(t, "Paracetamol", got[1].Name)

	got, err = s.Search(ctx, "cill")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Amoxicillin", got[0].Name)

	got, err = s.Search(ctx, "_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Vitamin_C", got[0].Name)

	got, err = s.Search(ctx, "")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, m := range got {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Amoxicillin", "Ibuprofen", "Paracetamol", "Vitamin_C"}, names)
}

func TestInStockAndStockLevels(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	mustAdd(t, s, "Paracetamol", "Analgesic", "2", 50)
	mustAdd(t, s, "Insulin", "Hormone", "40", 0)
	mustAdd(t, s, "Cough Syrup", "Syrup", "5", 9)

	in, err := s.InStock(ctx)
	require.NoError(t, err)
	require.Len(t, in, 2)
	assert.Equal(t, "Cough Syrup", in[0].Name)

	levels, err := s.StockLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, "Insulin", levels[0].Name)
	assert.Equal(t, "Paracetamol", levels[2].Name)
}
