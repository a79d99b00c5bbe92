package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/cart"
	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/pricing"
	"github.com/mlaurent/superette/internal/receipt"
	"github.com/mlaurent/superette/internal/store"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	DryRun bool
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell <barcode>...",
		Short: "Sell products by barcode and print the receipt",
		Long: `Build a cart by scanning the given barcodes, in order, then commit
the sale and print the receipt. Scanning the same barcode twice merges
into one line with quantity 2. Unknown barcodes are reported and skipped;
the sale goes through with the rest.

Example:
  superette sell --db ./superette.db 1234567890123 1234567890123 8901234567890
  superette sell --dry-run 1234567890123`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show totals without committing the sale")

	return cmd
}

func runSell(opts *SellOptions, cmd *cobra.Command, barcodes []string) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	rate, err := cfg.Rate()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid tax rate", err)
	}

	stores, err := openStores(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer stores.Close()

	// Scan phase. A barcode with no product is non-fatal: report and keep
	// scanning, like the till does.
	c := cart.New(stores.Catalog)
	for _, barcode := range barcodes {
		if _, err := c.Scan(cmd.Context(), barcode); err != nil {
			if store.IsNotFound(err) {
				fmt.Fprintf(formatter.GetErrWriter(), "Produit non trouvé pour le code-barres: %s\n", barcode)
				continue
			}
			return storeFailure(formatter, err)
		}
	}

	if c.IsEmpty() {
		formatter.Error("NOT_FOUND", "no scanned barcode matched a product", nil)
		return NewExitError(ExitFailure, "empty cart")
	}

	lines := c.Lines()
	calc := pricing.NewCalculator(rate)
	totals := calc.Compute(lines)

	if opts.DryRun {
		if opts.Format == "json" {
			return formatter.Success(map[string]interface{}{"lines": lines, "totals": totals})
		}
		return formatter.Success(renderCart(lines, totals))
	}

	committer := invoice.NewCommitter(stores.Catalog, stores.Invoices, calc, invoice.SystemClock{})
	inv, err := committer.Commit(cmd.Context(), lines)
	if err != nil {
		return storeFailure(formatter, err)
	}

	items, err := stores.Invoices.InvoiceItems(cmd.Context(), inv.ID)
	if err != nil {
		return storeFailure(formatter, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{"invoice": inv, "items": items})
	}

	text := receipt.Render(receipt.Build(cmd.Context(), stores.Catalog, cfg.StoreName, rate, inv, items))
	fmt.Fprint(formatter.Writer, text)
	return nil
}

func renderCart(lines []cart.Line, totals pricing.Totals) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tUNIT\tTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			l.Product.Name, l.Quantity, l.Product.Price.StringFixed(2),
			pricing.LineTotal(l.Product.Price, l.Quantity).StringFixed(2))
	}
	w.Flush()
	fmt.Fprintf(&buf, "\nSous-total: %s\nTVA:        %s\nTotal:      %s",
		totals.Subtotal.StringFixed(2), totals.Tax.StringFixed(2), totals.Total.StringFixed(2))
	return buf.String()
}
