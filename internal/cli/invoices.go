package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/receipt"
)

// NewInvoicesCommand creates the invoices command group.
func NewInvoicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invoices",
		Short:         "Browse sale history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newInvoicesListCommand(rootOpts))
	cmd.AddCommand(newInvoicesShowCommand(rootOpts))

	return cmd
}

func newInvoicesListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List committed invoices, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			stores, err := openCatalogStores(opts)
			if err != nil {
				return err
			}
			defer stores.Close()

			invoices, err := stores.Invoices.ListInvoices(cmd.Context())
			if err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(invoices)
			}
			return formatter.Success(renderInvoiceTable(invoices))
		},
	}
}

func newInvoicesShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Reprint the receipt for one invoice",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid invoice id", err)
			}

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

			inv, err := stores.Invoices.GetInvoice(cmd.Context(), id)
			if err != nil {
				return storeFailure(formatter, err)
			}
			items, err := stores.Invoices.InvoiceItems(cmd.Context(), id)
			if err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(map[string]interface{}{"invoice": inv, "items": items})
			}

			text := receipt.Render(receipt.Build(cmd.Context(), stores.Catalog, cfg.StoreName, rate, inv, items))
			fmt.Fprint(formatter.Writer, text)
			return nil
		},
	}
}

func renderInvoiceTable(invoices []invoice.Invoice) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tSUBTOTAL\tTAX\tTOTAL\tDATE")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Number,
			inv.Subtotal.StringFixed(2), inv.Tax.StringFixed(2), inv.Total.StringFixed(2),
			inv.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return buf.String()
}
