package billing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"medstore/m/domain"
)

type State int

const (
	Empty State = iota
	Building
)

func (s State) String() string {
	if s == Building {
		return "building"
	}
	return "empty"
}

// MedicineReader looks up the current catalog record of a medicine.
type MedicineReader interface {
	Get(ctx context.Context, id int64) (domain.Medicine, error)
}

// Builder accumulates the single in-progress bill of an operator session.
type Builder struct {
	medicines       MedicineReader
	defaultCustomer string
	bill            Bill
}

func NewBuilder(medicines MedicineReader, defaultCustomer string) *Builder {
	b := &Builder{medicines: medicines, defaultCustomer: defaultCustomer}
	b.Clear()
	return b
}

// AddItem appends quantity units of a medicine to the bill. Stock is checked
// against the catalog at the moment of the call.
func (b *Builder) AddItem(ctx context.Context, medicineID, quantity int64) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, domain.NewValidationError("quantity", "must be greater than zero")
	}

	med, err := b.medicines.Get(ctx, medicineID)
	if err != nil {
		return LineItem{}, err
	}
	if quantity > med.Quantity {
		return LineItem{}, &domain.InsufficientStockError{
			MedicineID: med.ID,
			Name:       med.Name,
			Requested:  quantity,
			Available:  med.Quantity,
		}
	}

	item := LineItem{
		MedicineID: med.ID,
		Name:       med.Name,
		Quantity:   quantity,
		UnitPrice:  med.SalePrice,
	}
	b.bill.Items = append(b.bill.Items, item)
	return item, nil
}

// Clear discards every line and resets the customer.
func (b *Builder) Clear() {
	b.bill = Bill{Customer: b.defaultCustomer}
}

func (b *Builder) CurrentTotal() decimal.Decimal {
	return b.bill.Total()
}

func (b *Builder) State() State {
	if len(b.bill.Items) == 0 {
		return Empty
	}
	return Building
}

// SetCustomer names the customer; a blank name restores the default.
func (b *Builder) SetCustomer(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = b.defaultCustomer
	}
	b.bill.Customer = name
}

func (b *Builder) Customer() string {
	return b.bill.Customer
}

// Items returns a copy of the current lines in insertion order.
func (b *Builder) Items() []LineItem {
	return append([]LineItem(nil), b.bill.Items...)
}

// Snapshot returns a copy of the bill that is safe to hand to a committer.
func (b *Builder) Snapshot() Bill {
	return Bill{Customer: b.bill.Customer, Items: b.Items()}
}

// Checkout commits the current bill through c. The builder is reset only when
// the commit succeeds; on failure the bill stays as it was.
func (b *Builder) Checkout(ctx context.Context, c *Committer, customer string) (domain.BillSummary, error) {
	if strings.TrimSpace(customer) == "" {
		customer = b.bill.Customer
	}
	summary, err := c.Commit(ctx, b.Snapshot(), customer)
	if err != nil {
		return domain.BillSummary{}, err
	}
	b.Clear()
	return summary, nil
}
