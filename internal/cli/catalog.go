package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/store"
)

// productFlags are the writable product fields, shared by add and update.
type productFlags struct {
	Barcode  string
	Name     string
	Price    string
	Category string
	Stock    int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Barcode, "barcode", "", "product barcode")
	cmd.Flags().StringVar(&f.Name, "name", "", "display name")
	cmd.Flags().StringVar(&f.Price, "price", "", "unit price, decimal string (e.g. 2.50)")
	cmd.Flags().StringVar(&f.Category, "category", "", "category (free text)")
	cmd.Flags().IntVar(&f.Stock, "stock", 0, "stock quantity")
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogAddCommand(rootOpts))
	cmd.AddCommand(newCatalogUpdateCommand(rootOpts))
	cmd.AddCommand(newCatalogDeleteCommand(rootOpts))

	return cmd
}

func newCatalogListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all products",
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

			products, err := stores.Catalog.ListProducts(cmd.Context())
			if err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(products)
			}
			return formatter.Success(renderProductTable(products))
		},
	}
}

func newCatalogAddCommand(opts *RootOptions) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:           "add",
		Short:         "Add a product",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			price, err := decimal.NewFromString(flags.Price)
			if err != nil {
				formatter.Error("INVALID_INPUT", fmt.Sprintf("invalid price %q", flags.Price), nil)
				return WrapExitError(ExitCommandError, "invalid price", err)
			}

			p := catalog.Product{
				Barcode:  flags.Barcode,
				Name:     flags.Name,
				Price:    price,
				Category: flags.Category,
				Stock:    flags.Stock,
			}
			p.Normalize()
			if err := p.Validate(); err != nil {
				formatter.Error("INVALID_INPUT", err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid product", err)
			}

			stores, err := openCatalogStores(opts)
			if err != nil {
				return err
			}
			defer stores.Close()

			if _, err := stores.Catalog.InsertProduct(cmd.Context(), &p); err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(p)
			}
			return formatter.Success(fmt.Sprintf("Added product %d: %s (%s)", p.ID, p.Name, p.Barcode))
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("barcode")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newCatalogUpdateCommand(opts *RootOptions) *cobra.Command {
	flags := &productFlags{}

	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Update a product (only the given flags change)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid product id", err)
			}

			stores, err := openCatalogStores(opts)
			if err != nil {
				return err
			}
			defer stores.Close()

			p, err := stores.Catalog.GetProduct(cmd.Context(), id)
			if err != nil {
				return storeFailure(formatter, err)
			}

			// Partial update: only flags the operator actually set.
			if cmd.Flags().Changed("barcode") {
				p.Barcode = flags.Barcode
			}
			if cmd.Flags().Changed("name") {
				p.Name = flags.Name
			}
			if cmd.Flags().Changed("price") {
				price, err := decimal.NewFromString(flags.Price)
				if err != nil {
					formatter.Error("INVALID_INPUT", fmt.Sprintf("invalid price %q", flags.Price), nil)
					return WrapExitError(ExitCommandError, "invalid price", err)
				}
				p.Price = price
			}
			if cmd.Flags().Changed("category") {
				p.Category = flags.Category
			}
			if cmd.Flags().Changed("stock") {
				p.Stock = flags.Stock
			}

			p.Normalize()
			if err := p.Validate(); err != nil {
				formatter.Error("INVALID_INPUT", err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid product", err)
			}

			if err := stores.Catalog.UpdateProduct(cmd.Context(), p); err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(p)
			}
			return formatter.Success(fmt.Sprintf("Updated product %d: %s (%s)", p.ID, p.Name, p.Barcode))
		},
	}

	flags.register(cmd)

	return cmd
}

func newCatalogDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts, cmd)

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid product id", err)
			}

			stores, err := openCatalogStores(opts)
			if err != nil {
				return err
			}
			defer stores.Close()

			if err := stores.Catalog.DeleteProduct(cmd.Context(), id); err != nil {
				return storeFailure(formatter, err)
			}

			if opts.Format == "json" {
				return formatter.Success(map[string]int64{"deleted": id})
			}
			return formatter.Success(fmt.Sprintf("Deleted product %d", id))
		},
	}
}

// newFormatter builds the output formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}
}

// openCatalogStores resolves config and opens the backend, mapping failures
// to command errors.
func openCatalogStores(opts *RootOptions) (*Stores, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	stores, err := openStores(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return stores, nil
}

// storeFailure reports a storage error through the formatter and converts
// it to an operation-failure exit code.
func storeFailure(formatter *OutputFormatter, err error) error {
	code := "STORAGE_UNAVAILABLE"
	switch {
	case store.IsNotFound(err):
		code = "NOT_FOUND"
	case store.IsConstraintViolation(err):
		code = "CONSTRAINT_VIOLATION"
	}
	formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, code, err)
}

func renderProductTable(products []catalog.Product) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBARCODE\tNAME\tPRICE\tCATEGORY\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Barcode, p.Name, p.Price.StringFixed(2), p.Category, p.Stock)
	}
	w.Flush()
	return buf.String()
}
