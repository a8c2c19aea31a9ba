package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"medstore/m/domain"
	"medstore/m/internal/billing"
	"medstore/m/internal/catalog"
	"medstore/m/internal/clock"
	"medstore/m/internal/config"
	"medstore/m/internal/ledger"
	"medstore/m/internal/render"
)

const prompt = "medstore> "

const helpText = `Commands:
  list [term]              medicines in stock, or search by name or category
  stock                    stock levels, lowest first
  low                      medicines below the low-stock threshold
  add <selector> <qty>     add a medicine to the bill
  customer <name>          set the customer name
  show                     show the current bill
  total                    show the bill total
  commit [customer]        generate the bill
  clear                    discard the current bill
  save [file]              save the bill (.txt, or .pdf after commit)
  rate <selector> <price>  change a sale price
  recent [n]               latest sales
  report [from] [to]       sales between two dates (YYYY-MM-DD)
  quit                     leave the console
`

// Deps are the services the console drives.
type Deps struct {
	Catalog   *catalog.Store
	Ledger    *ledger.Ledger
	Committer *billing.Committer
	Clock     clock.Clock
	Config    config.Config
	Log       *zap.Logger
}

type committed struct {
	bill    billing.Bill
	summary domain.BillSummary
}

// Shell is a line-oriented billing console holding one bill in progress.
type Shell struct {
	deps    Deps
	builder *billing.Builder
	in      *bufio.Scanner
	out     io.Writer
	log     *zap.Logger

	display string
	last    *committed
}

func New(deps Deps, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		deps:    deps,
		builder: billing.NewBuilder(deps.Catalog, deps.Config.DefaultCustomer),
		in:      bufio.NewScanner(in),
		out:     out,
		log:     deps.Log.Named("console"),
	}
}

// Run reads commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "%s billing console. Type help for commands.\n", s.deps.Config.AppName)
	s.warnLowStock(ctx)

	for {
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Execute(ctx, s.in.Text())
		if err != nil {
			fmt.Fprintln(s.out, describe(err))
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single command line. It reports whether the console should
// stop.
func (s *Shell) Execute(ctx context.Context, line string) (bool, error) {
	cmd, rest := splitCommand(line)
	switch cmd {
	case "":
		return false, nil
	case "help", "?":
		fmt.Fprint(s.out, helpText)
	case "quit", "exit":
		return true, nil
	case "list":
		return false, s.list(ctx, rest)
	case "stock":
		return false, s.stock(ctx)
	case "low":
		return false, s.low(ctx)
	case "add":
		return false, s.add(ctx, rest)
	case "customer":
		s.builder.SetCustomer(rest)
		fmt.Fprintf(s.out, "Customer: %s\n", s.builder.Customer())
	case "show":
		s.show()
	case "total":
		fmt.Fprintf(s.out, "₹%s\n", render.Money(s.builder.CurrentTotal()))
	case "commit":
		return false, s.commit(ctx, rest)
	case "clear":
		s.builder.Clear()
		s.display = ""
		s.last = nil
		fmt.Fprintln(s.out, "Bill cleared.")
	case "save":
		return false, s.save(rest)
	case "rate":
		return false, s.rate(ctx, rest)
	case "recent":
		return false, s.recent(ctx, rest)
	case "report":
		return false, s.report(ctx, rest)
	default:
		return false, fmt.Errorf("unknown command %q, type help for a list", cmd)
	}
	return false, nil
}

func (s *Shell) list(ctx context.Context, term string) error {
	var (
		medicines []domain.Medicine
		err       error
	)
	if term == "" {
		medicines, err = s.deps.Catalog.InStock(ctx)
	} else {
		medicines, err = s.deps.Catalog.Search(ctx, term)
	}
	if err != nil {
		return err
	}
	if len(medicines) == 0 {
		fmt.Fprintln(s.out, "No medicines found.")
		return nil
	}
	for _, m := range medicines {
		fmt.Fprintln(s.out, BillingSelector(m))
	}
	return nil
}

func (s *Shell) stock(ctx context.Context) error {
	medicines, err := s.deps.Catalog.StockLevels(ctx)
	if err != nil {
		return err
	}
	return render.StockTable(s.out, medicines)
}

func (s *Shell) low(ctx context.Context) error {
	medicines, err := s.deps.Catalog.ListLowStock(ctx, s.deps.Config.LowStockThreshold)
	if err != nil {
		return err
	}
	if len(medicines) == 0 {
		fmt.Fprintln(s.out, "No medicines below the low-stock threshold.")
		return nil
	}
	return render.StockTable(s.out, medicines)
}

func (s *Shell) add(ctx context.Context, args string) error {
	selector, rawQty, ok := splitLast(args)
	if !ok {
		return domain.NewValidationError("", "usage: add <selector> <qty>")
	}
	id, err := ParseSelector(selector)
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(rawQty, 10, 64)
	if err != nil {
		return domain.NewValidationError("quantity", "must be a whole number")
	}

	item, err := s.builder.AddItem(ctx, id, qty)
	if err != nil {
		return err
	}
	s.last = nil
	s.display = render.BillText(s.builder.Snapshot())
	fmt.Fprintf(s.out, "Added %d x %s\n", item.Quantity, item.Name)
	fmt.Fprint(s.out, s.display)
	return nil
}

func (s *Shell) show() {
	text := s.display
	if text == "" {
		text = render.BillText(s.builder.Snapshot())
	}
	fmt.Fprintf(s.out, "Customer: %s\n", s.builder.Customer())
	fmt.Fprint(s.out, text)
}

func (s *Shell) commit(ctx context.Context, customer string) error {
	bill := s.builder.Snapshot()
	summary, err := s.builder.Checkout(ctx, s.deps.Committer, customer)
	if err != nil {
		return err
	}
	s.last = &committed{bill: bill, summary: summary}
	s.display = render.CommittedBillText(bill, summary)

	fmt.Fprintf(s.out, "Bill generated successfully! Bill ID: %d\n", summary.ID)
	fmt.Fprint(s.out, s.display)
	s.warnLowStock(ctx)
	return nil
}

func (s *Shell) save(path string) error {
	if s.display == "" {
		return domain.ErrEmptyBill
	}
	if path == "" {
		path = filepath.Join(s.deps.Config.BillDir, render.BillFileName(s.deps.Clock.Now()))
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if s.last == nil {
			return domain.NewValidationError("file", "a PDF can only be saved after the bill is generated")
		}
		doc, err := render.BillPDF(s.deps.Config.AppName, s.last.bill, s.last.summary)
		if err != nil {
			return err
		}
		data = doc
	} else {
		data = render.BillFile(s.display)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}
	s.log.Info("bill saved", zap.String("path", path))
	fmt.Fprintf(s.out, "Bill saved to %s\n", path)
	return nil
}

func (s *Shell) rate(ctx context.Context, args string) error {
	selector, rawPrice, ok := splitLast(args)
	if !ok {
		return domain.NewValidationError("", "usage: rate <selector> <price>")
	}
	id, err := ParseSelector(selector)
	if err != nil {
		return err
	}
	change, err := s.deps.Catalog.UpdateSalePrice(ctx, id, rawPrice)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Price updated for %s!\nOld Price: ₹%s\nNew Price: ₹%s\n",
		change.Name, render.Number(change.Previous), render.Number(change.Current))
	return nil
}

func (s *Shell) recent(ctx context.Context, args string) error {
	limit := s.deps.Config.RecentSalesLimit
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 {
			return domain.NewValidationError("limit", "must be a positive whole number")
		}
		limit = n
	}
	report, err := s.deps.Ledger.ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	return render.SalesTable(s.out, report.Sales, "Total Sales")
}

func (s *Shell) report(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) > 2 {
		return domain.NewValidationError("", "usage: report [from] [to]")
	}
	var from, to string
	if len(fields) > 0 {
		from = fields[0]
	}
	if len(fields) > 1 {
		to = fields[1]
	}
	report, err := s.deps.Ledger.ListByDateRange(ctx, from, to)
	if err != nil {
		return err
	}
	return render.SalesTable(s.out, report.Sales, "Total Filtered Sales")
}

func (s *Shell) warnLowStock(ctx context.Context) {
	medicines, err := s.deps.Catalog.ListLowStock(ctx, s.deps.Config.LowStockThreshold)
	if err != nil {
		s.log.Warn("unable to check low stock", zap.Error(err))
		return
	}
	if warning := render.LowStockWarning(medicines); warning != "" {
		fmt.Fprintln(s.out, warning)
	}
}

// describe turns an operation error into the message shown to the operator.
func describe(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrCommitFailed):
		var failed *domain.CommitFailedError
		if errors.As(err, &failed) && failed.Cause != nil {
			return "Error: " + domain.ErrCommitFailed.Error() + ": " + describeCause(failed.Cause)
		}
		return "Error: " + err.Error()
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Error: Insufficient stock! Available: %d", stockErr.Available)
	case errors.Is(err, domain.ErrEmptyBill):
		return "Error: No items in the bill!"
	default:
		return "Error: " + err.Error()
	}
}

func describeCause(err error) string {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return fmt.Sprintf("insufficient stock for %s, requested %d, available %d", stockErr.Name, stockErr.Requested, stockErr.Available)
	}
	return err.Error()
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

// splitLast separates the final whitespace-delimited token from the rest.
func splitLast(args string) (string, string, bool) {
	args = strings.TrimSpace(args)
	i := strings.LastIndexAny(args, " \t")
	if i < 0 {
		return "", "", false
	}
	head, tail := strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+1:])
	if head == "" || tail == "" {
		return "", "", false
	}
	return head, tail, true
}
