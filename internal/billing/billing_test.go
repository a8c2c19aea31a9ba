package billing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"medstore/m/domain"
	"medstore/m/internal/catalog"
	"medstore/m/internal/clock"
	"medstore/m/internal/config"
	"medstore/m/internal/database"
	"medstore/m/internal/ledger"
	"medstore/m/internal/migrations"
)

const walkIn = "Walk-in Customer"

type fixture struct {
	db        *sqlx.DB
	catalog   *catalog.Store
	ledger    *ledger.Ledger
	clock     *clock.FakeClock
	committer *Committer
	builder   *Builder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(config.DriverSQLite, filepath.Join(t.TempDir(), "billing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))

	log := zaptest.NewLogger(t)
	store := catalog.New(db, log)
	clk := clock.NewFakeClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local))
	committer := NewCommitter(db, store, clk, log, walkIn)
	return &fixture{
		db:        db,
		catalog:   store,
		ledger:    ledger.New(db),
		clock:     clk,
		committer: committer,
		builder:   NewBuilder(store, walkIn),
	}
}

func (f *fixture) add(t *testing.T, name, price string, qty int64) int64 {
	t.Helper()
	id, err := f.catalog.AddMedicine(context.Background(), domain.NewMedicine{
		Name:      name,
		SalePrice: decimal.RequireFromString(price),
		Quantity:  qty,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) quantity(t *testing.T, id int64) int64 {
	t.Helper()
	m, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return m.Quantity
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddItemAccumulatesTotal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)
	syrup := f.add(t, "Cough Syrup", "45.50", 10)
	vit := f.add(t, "Vitamin C", "0.35", 300)

	assert.Equal(t, Empty, f.builder.State())
	assert.True(t, f.builder.CurrentTotal().IsZero())

	steps := []struct {
		id  int64
		qty int64
	}{{para, 10}, {syrup, 3}, {vit, 7}, {para, 5}}

	expected := decimal.Zero
	for _, step := range steps {
		item, err := f.builder.AddItem(ctx, step.id, step.qty)
		require.NoError(t, err)
		expected = expected.Add(item.UnitPrice.Mul(decimal.NewFromInt(step.qty)))
		assert.True(t, f.builder.CurrentTotal().Equal(expected), "total %s want %s", f.builder.CurrentTotal(), expected)
	}

	assert.Equal(t, Building, f.builder.State())
	assert.True(t, f.builder.CurrentTotal().Equal(dec("168.95")))

	items := f.builder.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "Paracetamol", items[0].Name)
	assert.Equal(t, "Cough Syrup", items[1].Name)
	assert.Equal(t, "Vitamin C", items[2].Name)
	assert.True(t, items[2].Total().Equal(dec("2.45")))
}

func TestAddItemRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.builder.AddItem(ctx, para, 51)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(50), stockErr.Available)
	assert.Equal(t, int64(51), stockErr.Requested)

	_, err = f.builder.AddItem(ctx, para+1, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.builder.AddItem(ctx, para, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.builder.AddItem(ctx, para, -4)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, Empty, f.builder.State())
	assert.Empty(t, f.builder.Items())
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.builder.AddItem(ctx, para, 10)
	require.NoError(t, err)

	_, err = f.catalog.UpdateSalePrice(ctx, para, "3.00")
	require.NoError(t, err)

	_, err = f.builder.AddItem(ctx, para, 1)
	require.NoError(t, err)

	items := f.builder.Items()
	assert.True(t, items[0].UnitPrice.Equal(dec("2")))
	assert.True(t, items[1].UnitPrice.Equal(dec("3")))
	assert.True(t, f.builder.CurrentTotal().Equal(dec("23")))
}

func TestAddItemRevalidatesAgainstCurrentStock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 5)

	other := NewBuilder(f.catalog, walkIn)
	_, err := other.AddItem(ctx, para, 4)
	require.NoError(t, err)
	_, err = other.Checkout(ctx, f.committer, "")
	require.NoError(t, err)

	_, err = f.builder.AddItem(ctx, para, 2)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.Available)
}

func TestClear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	f.builder.SetCustomer("Asha")
	_, err := f.builder.AddItem(ctx, para, 3)
	require.NoError(t, err)

	f.builder.Clear()

	assert.Equal(t, Empty, f.builder.State())
	assert.True(t, f.builder.CurrentTotal().IsZero())
	assert.Equal(t, walkIn, f.builder.Customer())
	assert.Equal(t, 0, f.count(t, "sales"))
	assert.Equal(t, int64(50), f.quantity(t, para))
}

func TestCheckoutCommitsAndResets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)
	syrup := f.add(t, "Cough Syrup", "45.50", 10)

	_, err := f.builder.AddItem(ctx, para, 10)
	require.NoError(t, err)
	_, err = f.builder.AddItem(ctx, syrup, 2)
	require.NoError(t, err)

	summary, err := f.builder.Checkout(ctx, f.committer, "Asha")
	require.NoError(t, err)
	assert.Positive(t, summary.ID)
	assert.Equal(t, "Asha", summary.CustomerName)
	assert.Equal(t, "2024-01-15 10:30:00", summary.BillDate)
	assert.True(t, summary.TotalAmount.Equal(dec("111")))

	assert.Equal(t, int64(40), f.quantity(t, para))
	assert.Equal(t, int64(8), f.quantity(t, syrup))

	assert.Equal(t, Empty, f.builder.State())
	assert.True(t, f.builder.CurrentTotal().IsZero())
	assert.Empty(t, f.builder.Items())

	stored, lines, err := f.ledger.Bill(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.CustomerName)
	assert.True(t, stored.TotalAmount.Equal(dec("111")))
	require.Len(t, lines, 2)
	assert.Equal(t, para, lines[0].MedicineID)
	assert.Equal(t, int64(10), lines[0].Quantity)
	assert.True(t, lines[0].UnitPrice.Equal(dec("2")))
	assert.True(t, lines[0].LineTotal.Equal(dec("20")))
	assert.Equal(t, "Cough Syrup", lines[1].MedicineName)
	assert.True(t, lines[1].LineTotal.Equal(dec("91")))
	for _, line := range lines {
		assert.Equal(t, stored.BillDate, line.SaleDate)
		require.NotNil(t, line.BillID)
		assert.Equal(t, summary.ID, *line.BillID)
	}
	assert.True(t, domain.SumLineTotals(lines).Equal(stored.TotalAmount))
}

func TestCheckoutUsesBuilderCustomerOrDefault(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.builder.AddItem(ctx, para, 1)
	require.NoError(t, err)
	summary, err := f.builder.Checkout(ctx, f.committer, "  ")
	require.NoError(t, err)
	assert.Equal(t, walkIn, summary.CustomerName)

	f.builder.SetCustomer("Ravi")
	_, err = f.builder.AddItem(ctx, para, 1)
	require.NoError(t, err)
	summary, err = f.builder.Checkout(ctx, f.committer, "")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", summary.CustomerName)
	assert.Equal(t, walkIn, f.builder.Customer())
}

func TestCommitEmptyBill(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.committer.Commit(ctx, Bill{}, "Asha")
	assert.ErrorIs(t, err, domain.ErrEmptyBill)

	_, err = f.builder.Checkout(ctx, f.committer, "Asha")
	assert.ErrorIs(t, err, domain.ErrEmptyBill)

	assert.Equal(t, 0, f.count(t, "sales"))
	assert.Equal(t, 0, f.count(t, "bills"))
	assert.Equal(t, int64(50), f.quantity(t, para))
}

func TestCommitRejectsCumulativeDemand(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.builder.AddItem(ctx, para, 10)
	require.NoError(t, err)
	assert.True(t, f.builder.CurrentTotal().Equal(dec("20")))

	_, err = f.builder.AddItem(ctx, para, 45)
	require.NoError(t, err)
	assert.True(t, f.builder.CurrentTotal().Equal(dec("110")))

	_, err = f.builder.Checkout(ctx, f.committer, "Asha")
	require.ErrorIs(t, err, domain.ErrCommitFailed)
	var failed *domain.CommitFailedError
	require.ErrorAs(t, err, &failed)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(55), stockErr.Requested)
	assert.Equal(t, int64(50), stockErr.Available)

	assert.Equal(t, int64(50), f.quantity(t, para))
	assert.Equal(t, 0, f.count(t, "sales"))
	assert.Equal(t, 0, f.count(t, "bills"))

	assert.Equal(t, Building, f.builder.State())
	assert.Len(t, f.builder.Items(), 2)
	assert.Equal(t, "Walk-in Customer", f.builder.Customer())
}

func TestCommitRollsBackEarlierDecrements(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)
	syrup := f.add(t, "Cough Syrup", "45.50", 2)

	_, err := f.builder.AddItem(ctx, para, 10)
	require.NoError(t, err)
	_, err = f.builder.AddItem(ctx, syrup, 2)
	require.NoError(t, err)

	// Stock sold elsewhere after the line was added.
	other := NewBuilder(f.catalog, walkIn)
	_, err = other.AddItem(ctx, syrup, 1)
	require.NoError(t, err)
	_, err = other.Checkout(ctx, f.committer, "")
	require.NoError(t, err)

	_, err = f.builder.Checkout(ctx, f.committer, "Asha")
	require.ErrorIs(t, err, domain.ErrCommitFailed)

	assert.Equal(t, int64(50), f.quantity(t, para))
	assert.Equal(t, int64(1), f.quantity(t, syrup))
	assert.Equal(t, 1, f.count(t, "sales"))
	assert.Equal(t, 1, f.count(t, "bills"))
	assert.Equal(t, Building, f.builder.State())
}

func TestCommitFailsForDeletedMedicine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	bill := Bill{Items: []LineItem{
		{MedicineID: para, Name: "Paracetamol", Quantity: 1, UnitPrice: dec("2")},
		{MedicineID: para + 99, Name: "Ghost", Quantity: 1, UnitPrice: dec("1")},
	}}
	_, err := f.committer.Commit(ctx, bill, "")
	require.ErrorIs(t, err, domain.ErrCommitFailed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(50), f.quantity(t, para))
}

func TestCommitTimestampsShareBill(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	para := f.add(t, "Paracetamol", "2.00", 50)

	_, err := f.builder.AddItem(ctx, para, 1)
	require.NoError(t, err)
	first, err := f.builder.Checkout(ctx, f.committer, "")
	require.NoError(t, err)

	f.clock.Advance(90 * time.Minute)
	_, err = f.builder.AddItem(ctx, para, 2)
	require.NoError(t, err)
	second, err := f.builder.Checkout(ctx, f.committer, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15 10:30:00", first.BillDate)
	assert.Equal(t, "2024-01-15 12:00:00", second.BillDate)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, int64(47), f.quantity(t, para))
}

func TestBillDemand(t *testing.T) {
	bill := Bill{Items: []LineItem{
		{MedicineID: 3, Quantity: 2},
		{MedicineID: 1, Quantity: 4},
		{MedicineID: 3, Quantity: 5},
	}}
	order, demand := bill.Demand()
	assert.Equal(t, []int64{3, 1}, order)
	assert.Equal(t, map[int64]int64{3: 7, 1: 4}, demand)
}
