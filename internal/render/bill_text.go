package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"medstore/m/domain"
	"medstore/m/internal/billing"
)

const (
	billWidth    = 40
	billTitle    = "MEDICAL STORE BILL"
	currencySign = "₹"
)

var (
	doubleRule = strings.Repeat("=", billWidth) + "\n"
	singleRule = strings.Repeat("-", billWidth) + "\n"
)

// BillText renders the in-progress bill the way it is shown to the operator.
func BillText(bill billing.Bill) string {
	var b strings.Builder
	b.WriteString(doubleRule)
	b.WriteString(billTitle + "\n")
	b.WriteString(doubleRule)
	fmt.Fprintf(&b, "%-20s %-6s %-8s %-8s\n", "Item", "Qty", "Price", "Total")
	b.WriteString(singleRule)
	for _, item := range bill.Items {
		fmt.Fprintf(&b, "%-20.20s %-6d %s%-7s %s%-7s\n",
			item.Name, item.Quantity,
			currencySign, Number(item.UnitPrice),
			currencySign, Number(item.Total()))
	}
	b.WriteString(doubleRule)
	fmt.Fprintf(&b, "%-32s %s%s\n", "TOTAL AMOUNT:", currencySign, Money(bill.Total()))
	b.WriteString(doubleRule)
	return b.String()
}

// CommittedBillText is BillText followed by the bill id, customer and date of
// a committed bill.
func CommittedBillText(bill billing.Bill, summary domain.BillSummary) string {
	return BillText(bill) + fmt.Sprintf("\nBill ID: %d\nCustomer: %s\nDate: %s\n",
		summary.ID, summary.CustomerName, summary.BillDate)
}

// BillFile returns the bytes written when a rendered bill is saved.
func BillFile(text string) []byte {
	return []byte(text + "\n")
}

// BillFileName is the default file name of a bill saved at now.
func BillFileName(now time.Time) string {
	return "bill_" + now.Format("20060102_150405") + ".txt"
}

// BillFromSales rebuilds a bill from the sale lines stored in the ledger.
func BillFromSales(summary domain.BillSummary, sales []domain.SaleRecord) billing.Bill {
	bill := billing.Bill{Customer: summary.CustomerName, Items: make([]billing.LineItem, 0, len(sales))}
	for _, s := range sales {
		bill.Items = append(bill.Items, billing.LineItem{
			MedicineID: s.MedicineID,
			Name:       s.MedicineName,
			Quantity:   s.Quantity,
			UnitPrice:  s.UnitPrice,
		})
	}
	return bill
}

// Number formats an amount in its shortest form with at least one decimal
// place, e.g. 2 -> "2.0" and 45.50 -> "45.5".
func Number(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Money formats an amount with exactly two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
