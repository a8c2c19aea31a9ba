package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"medstore/m/domain"
)

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

// MedicineTable lists medicines with their prices.
func MedicineTable(w io.Writer, medicines []domain.Medicine) error {
	tw := newTable(w, "ID", "Name", "Company", "Category", "Purchase", "Sale", "Qty", "Expiry")
	for _, m := range medicines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			m.ID, m.Name, m.Company, m.Category, Number(m.PurchasePrice), Number(m.SalePrice), m.Quantity, m.ExpiryDate)
	}
	return tw.Flush()
}

// StockTable lists medicines by stock level.
func StockTable(w io.Writer, medicines []domain.Medicine) error {
	tw := newTable(w, "ID", "Name", "Company", "Category", "Qty", "Expiry")
	for _, m := range medicines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", m.ID, m.Name, m.Company, m.Category, m.Quantity, m.ExpiryDate)
	}
	return tw.Flush()
}

// SalesTable lists sale records followed by a total line with the given label.
func SalesTable(w io.Writer, sales []domain.SaleRecord, label string) error {
	tw := newTable(w, "Sale ID", "Medicine", "Qty", "Price", "Total", "Date")
	for _, s := range sales {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", s.ID, s.MedicineName, s.Quantity, Number(s.UnitPrice), Number(s.LineTotal), s.SaleDate)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %s%s\n", label, currencySign, Money(domain.SumLineTotals(sales)))
	return err
}

// LowStockWarning is the banner shown when any medicine is below the
// threshold. It is empty when nothing is low.
func LowStockWarning(medicines []domain.Medicine) string {
	if len(medicines) == 0 {
		return ""
	}
	names := make([]string, 0, len(medicines))
	for _, m := range medicines {
		names = append(names, m.Name)
	}
	return "⚠️ Low Stock Warning: " + strings.Join(names, ", ")
}
