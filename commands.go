package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"medstore/m/domain"
	"medstore/m/internal/app"
	"medstore/m/internal/catalog"
	"medstore/m/internal/console"
	"medstore/m/internal/render"
	"medstore/m/internal/seed"
)

func commands(current func() *app.App) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "shell",
			Usage: "interactive billing console",
			Action: func(c *cli.Context) error {
				a := current()
				sh := console.New(console.Deps{
					Catalog:   a.Catalog,
					Ledger:    a.Ledger,
					Committer: a.Committer,
					Clock:     a.Clock,
					Config:    a.Config,
					Log:       a.Log,
				}, os.Stdin, os.Stdout)
				return sh.Run(c.Context)
			},
		},
		{
			Name:  "medicine",
			Usage: "manage the catalog",
			Subcommands: []*cli.Command{
				{
					Name:  "add",
					Usage: "add a medicine",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "name", Required: true},
						&cli.StringFlag{Name: "company"},
						&cli.StringFlag{Name: "category"},
						&cli.StringFlag{Name: "purchase-price"},
						&cli.StringFlag{Name: "sale-price"},
						&cli.StringFlag{Name: "quantity"},
						&cli.StringFlag{Name: "expiry", Usage: "YYYY-MM-DD"},
					},
					Action: func(c *cli.Context) error {
						m, err := catalog.ParseForm(catalog.MedicineForm{
							Name:          c.String("name"),
							Company:       c.String("company"),
							Category:      c.String("category"),
							PurchasePrice: c.String("purchase-price"),
							SalePrice:     c.String("sale-price"),
							Quantity:      c.String("quantity"),
							ExpiryDate:    c.String("expiry"),
						})
						if err != nil {
							return err
						}
						id, err := current().Catalog.AddMedicine(c.Context, m)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "Medicine added successfully! ID: %d\n", id)
						return nil
					},
				},
				{
					Name:      "rate",
					Usage:     "change the sale price of a medicine",
					ArgsUsage: "<selector> <price>",
					Action: func(c *cli.Context) error {
						if c.Args().Len() != 2 {
							return domain.NewValidationError("", "usage: medicine rate <selector> <price>")
						}
						id, err := console.ParseSelector(c.Args().Get(0))
						if err != nil {
							return err
						}
						change, err := current().Catalog.UpdateSalePrice(c.Context, id, c.Args().Get(1))
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "Price updated for %s!\nOld Price: ₹%s\nNew Price: ₹%s\n",
							change.Name, render.Number(change.Previous), render.Number(change.Current))
						return nil
					},
				},
				{
					Name:      "list",
					Usage:     "list or search medicines",
					ArgsUsage: "[term]",
					Action: func(c *cli.Context) error {
						medicines, err := current().Catalog.Search(c.Context, strings.Join(c.Args().Slice(), " "))
						if err != nil {
							return err
						}
						return render.MedicineTable(c.App.Writer, medicines)
					},
				},
			},
		},
		{
			Name:  "stock",
			Usage: "stock levels, lowest first",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "low", Usage: "only medicines below the threshold"},
				&cli.Int64Flag{Name: "threshold", Usage: "low-stock threshold (defaults to LOW_STOCK_THRESHOLD)"},
			},
			Action: func(c *cli.Context) error {
				a := current()
				if !c.Bool("low") {
					medicines, err := a.Catalog.StockLevels(c.Context)
					if err != nil {
						return err
					}
					return render.StockTable(c.App.Writer, medicines)
				}

				threshold := a.Config.LowStockThreshold
				if c.IsSet("threshold") {
					threshold = c.Int64("threshold")
				}
				medicines, err := a.Catalog.ListLowStock(c.Context, threshold)
				if err != nil {
					return err
				}
				if warning := render.LowStockWarning(medicines); warning != "" {
					fmt.Fprintln(c.App.Writer, warning)
				}
				return render.StockTable(c.App.Writer, medicines)
			},
		},
		{
			Name:  "sales",
			Usage: "sales history",
			Subcommands: []*cli.Command{
				{
					Name:  "recent",
					Usage: "latest sales, newest first",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "limit", Usage: "number of sales (defaults to RECENT_SALES_LIMIT)"},
					},
					Action: func(c *cli.Context) error {
						a := current()
						limit := a.Config.RecentSalesLimit
						if c.IsSet("limit") {
							limit = c.Int("limit")
						}
						report, err := a.Ledger.ListRecent(c.Context, limit)
						if err != nil {
							return err
						}
						return render.SalesTable(c.App.Writer, report.Sales, "Total Sales")
					},
				},
				{
					Name:  "report",
					Usage: "sales within a date range",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "from", Usage: "YYYY-MM-DD"},
						&cli.StringFlag{Name: "to", Usage: "YYYY-MM-DD"},
					},
					Action: func(c *cli.Context) error {
						report, err := current().Ledger.ListByDateRange(c.Context, c.String("from"), c.String("to"))
						if err != nil {
							return err
						}
						return render.SalesTable(c.App.Writer, report.Sales, "Total Filtered Sales")
					},
				},
			},
		},
		{
			Name:  "bill",
			Usage: "committed bills",
			Subcommands: []*cli.Command{
				{
					Name:      "show",
					Usage:     "print or save a committed bill",
					ArgsUsage: "<id>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "out", Usage: "write to a .txt or .pdf file"},
					},
					Action: showBill(current),
				},
			},
		},
		{
			Name:  "export",
			Usage: "export the catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv or xlsx"},
				&cli.StringFlag{Name: "out", Usage: "output file (defaults to medicine_list.<format>)"},
			},
			Action: exportCatalog(current),
		},
		{
			Name:      "import",
			Usage:     "import a catalog CSV in the export format",
			ArgsUsage: "<file.csv>",
			Action: func(c *cli.Context) error {
				if c.Args().Len() != 1 {
					return domain.NewValidationError("", "usage: import <file.csv>")
				}
				a := current()
				f, err := os.Open(c.Args().First())
				if err != nil {
					return err
				}
				defer f.Close()

				result, err := seed.LoadMedicines(c.Context, a.DB, a.Log, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Imported %d medicines\n", result.Imported)
				for _, s := range result.Skipped {
					fmt.Fprintf(c.App.Writer, "  skipped line %d: %s\n", s.Line, s.Reason)
				}
				return nil
			},
		},
	}
}

func showBill(current func() *app.App) cli.ActionFunc {
	return func(c *cli.Context) error {
		id, err := strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil || id <= 0 {
			return domain.NewValidationError("bill", "id must be a positive whole number")
		}
		a := current()
		summary, sales, err := a.Ledger.Bill(c.Context, id)
		if err != nil {
			return err
		}
		bill := render.BillFromSales(summary, sales)
		text := render.CommittedBillText(bill, summary)

		out := c.String("out")
		if out == "" {
			fmt.Fprint(c.App.Writer, text)
			return nil
		}

		data := render.BillFile(text)
		if strings.EqualFold(filepath.Ext(out), ".pdf") {
			if data, err = render.BillPDF(a.Config.AppName, bill, summary); err != nil {
				return err
			}
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to save bill: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Bill saved to %s\n", out)
		return nil
	}
}

func exportCatalog(current func() *app.App) cli.ActionFunc {
	return func(c *cli.Context) error {
		format := strings.ToLower(c.String("format"))
		if format != "csv" && format != "xlsx" {
			return domain.NewValidationError("format", "must be csv or xlsx")
		}
		out := c.String("out")
		if out == "" {
			out = "medicine_list." + format
		}

		medicines, err := current().Catalog.All(c.Context)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}
		defer f.Close()

		if format == "xlsx" {
			err = render.CatalogXLSX(f, medicines)
		} else {
			err = render.CatalogCSV(f, medicines)
		}
		if err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "Data exported to %s\n", out)
		return f.Close()
	}
}
