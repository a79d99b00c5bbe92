package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file.cue]",
		Short: "Load products into the catalog",
		Long: `Load products into the catalog from a CUE seed file, or from the
built-in default catalog when no file is given.

Seed files are validated against the embedded schema before anything is
written. Barcodes already present in the catalog are skipped, so seeding
an initialized store is safe.

Example:
  superette seed --db ./superette.db
  superette seed --db ./superette.db ./catalog.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, cmd, args)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	products := seed.Defaults()
	source := "defaults"
	if len(args) == 1 {
		products, err = seed.LoadFile(args[0])
		if err != nil {
			formatter.Error("INVALID_INPUT", err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid seed file", err)
		}
		source = args[0]
	}

	stores, err := openStores(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer stores.Close()

	inserted, skipped, err := seed.Apply(cmd.Context(), stores.Catalog, products)
	if err != nil {
		formatter.Error("STORAGE_UNAVAILABLE", err.Error(), nil)
		return WrapExitError(ExitFailure, "seed failed", err)
	}

	formatter.VerboseLog("seed source: %s", source)
	if opts.Format == "json" {
		return formatter.Success(map[string]int{"inserted": inserted, "skipped": skipped})
	}
	return formatter.Success(fmt.Sprintf("Seeded %d product(s), skipped %d existing.", inserted, skipped))
}
