package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/pricing"
	"github.com/mlaurent/superette/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the POS HTTP API",
		Long: `Start the point-of-sale HTTP API for the desktop front end.

The server opens the configured storage backend (creating the SQLite
database if it does not exist) and serves the catalog, checkout and
invoice endpoints until interrupted.

Example:
  superette serve --db ./superette.db
  superette serve --memory --addr 127.0.0.1:9000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Addr != "" {
		cfg.ListenAddr = opts.Addr
	}

	logger := newLogger(cfg, opts.Verbose)
	logger.SetFormatter(&log.JSONFormatter{})

	rate, err := cfg.Rate()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid tax rate", err)
	}

	logger.WithFields(log.Fields{"backend": cfg.Backend, "db": cfg.DBPath}).Info("opening store")
	stores, err := openStores(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := stores.Close(); closeErr != nil {
			logger.WithError(closeErr).Error("error closing store")
		}
	}()

	calc := pricing.NewCalculator(rate)
	committer := invoice.NewCommitter(stores.Catalog, stores.Invoices, calc, invoice.SystemClock{})
	srv := server.New(cfg.ListenAddr, stores.Catalog, stores.Invoices, committer, calc, cfg.StoreName, logger)

	// Graceful shutdown on SIGINT/SIGTERM. The command's context is used
	// when set so tests can stop the server.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "POS API listening on %s. Press Ctrl-C to stop.\n", cfg.ListenAddr)

	select {
	case err := <-errChan:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitFailure, "shutdown error", err)
		}
	}

	logger.Info("server stopped gracefully")
	return nil
}
