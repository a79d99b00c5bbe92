// Package cli implements the superette command tree: serving the HTTP API,
// seeding the catalog, managing products, selling from the terminal and
// browsing sale history.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional YAML config file
	DB      string // overrides the configured database path
	Memory  bool   // selects the in-memory backend
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// LoadConfig resolves the effective configuration: defaults, then config
// file, then environment, then command-line flags.
func (o *RootOptions) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, err
	}
	if o.DB != "" {
		cfg.DBPath = o.DB
	}
	if o.Memory {
		cfg.Backend = config.BackendMemory
	}
	return cfg, nil
}

// NewRootCommand creates the root command for the superette CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "superette",
		Short: "Superette POS - Point de Vente",
		Long:  "A point-of-sale for a small retail store: barcode catalog, checkout cart, tax-inclusive totals and atomic invoice persistence.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "use the in-memory backend instead of SQLite")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewInvoicesCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
