package render

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"medstore/m/domain"
	"medstore/m/internal/billing"
)

// The built-in PDF fonts have no rupee glyph.
const pdfCurrency = "Rs. "

// BillPDF renders a committed bill as a one-page PDF document.
func BillPDF(storeName string, bill billing.Bill, summary domain.BillSummary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, storeName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, billTitle, props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   4,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New(fmt.Sprintf("Bill ID: %d", summary.ID), props.Text{Top: 0}),
			text.New("Customer: "+summary.CustomerName, props.Text{Top: 5}),
			text.New("Date: "+summary.BillDate, props.Text{Top: 10}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range bill.Items {
		m.AddRow(8,
			text.NewCol(6, item.Name, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, pdfCurrency+Money(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, pdfCurrency+Money(item.Total()), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "TOTAL AMOUNT", props.Text{Style: fontstyle.Bold, Size: 10, Top: 3}),
		text.NewCol(3, pdfCurrency+Money(summary.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 3}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("unable to generate bill pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
