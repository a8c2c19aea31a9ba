package domain

import "github.com/shopspring/decimal"

// TimestampLayout is how sale and bill timestamps are stored and displayed.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar date portion of a timestamp.
const DateLayout = "2006-01-02"

type SaleRecord struct {
	ID           int64           `db:"sale_id" json:"id"`
	BillID       *int64          `db:"bill_id" json:"bill_id,omitempty"`
	MedicineID   int64           `db:"med_id" json:"medicine_id"`
	MedicineName string          `db:"med_name" json:"medicine_name"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"price" json:"unit_price"`
	LineTotal    decimal.Decimal `db:"total" json:"line_total"`
	SaleDate     string          `db:"sale_date" json:"sale_date"`
}

type BillSummary struct {
	ID           int64           `db:"bill_id" json:"id"`
	CustomerName string          `db:"customer_name" json:"customer_name"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
	BillDate     string          `db:"bill_date" json:"bill_date"`
}

// SumLineTotals adds up the line totals of the given sale records.
func SumLineTotals(sales []SaleRecord) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.LineTotal)
	}
	return total
}
