package cli

import (
	log "github.com/sirupsen/logrus"

	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/config"
	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/store"
)

// Stores bundles the selected backend behind the two domain contracts, plus
// the close hook for shutdown.
type Stores struct {
	Catalog  catalog.Store
	Invoices invoice.Store
	close    func() error
}

// Close releases the backend. Safe to defer immediately after openStores.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openStores opens the backend the configuration selects. The choice is
// made exactly once here; nothing downstream branches on the backend again.
func openStores(cfg *config.Config) (*Stores, error) {
	if cfg.Backend == config.BackendMemory {
		m := store.NewMemory()
		return &Stores{Catalog: m, Invoices: m, close: m.Close}, nil
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &Stores{Catalog: s, Invoices: s, close: s.Close}, nil
}

// newLogger builds the process logger from config, honoring --verbose.
func newLogger(cfg *config.Config, verbose bool) *log.Logger {
	logger := log.New()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	return logger
}
