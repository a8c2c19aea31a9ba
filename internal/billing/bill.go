package billing

import (
	"github.com/shopspring/decimal"
)

// LineItem is one medicine and quantity on a bill. Name and unit price are
// captured when the line is added; later rate changes do not alter it.
type LineItem struct {
	MedicineID int64
	Name       string
	Quantity   int64
	UnitPrice  decimal.Decimal
}

// Total returns quantity × unit price.
func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Bill is an in-progress customer transaction.
type Bill struct {
	Customer string
	Items    []LineItem
}

// Total is the sum of the line totals. It is recomputed on every call.
func (b Bill) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Demand sums the requested quantity per medicine, in the order each medicine
// first appears on the bill.
func (b Bill) Demand() ([]int64, map[int64]int64) {
	order := make([]int64, 0, len(b.Items))
	demand := make(map[int64]int64, len(b.Items))
	for _, item := range b.Items {
		if _, seen := demand[item.MedicineID]; !seen {
			order = append(order, item.MedicineID)
		}
		demand[item.MedicineID] += item.Quantity
	}
	return order, demand
}
