// Package server exposes the POS operations over a localhost HTTP API.
// It is the presentation boundary: the desktop front end (or curl at the
// counter) sends user intents here and renders the snapshots it gets back.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/pricing"
)

// Server wires the stores and the committer to HTTP routes.
type Server struct {
	catalog   catalog.Store
	invoices  invoice.Store
	committer *invoice.Committer
	calc      pricing.Calculator
	storeName string
	logger    *log.Logger

	http *http.Server
}

// New builds a Server, routing included.
func New(addr string, cat catalog.Store, inv invoice.Store, committer *invoice.Committer, calc pricing.Calculator, storeName string, logger *log.Logger) *Server {
	s := &Server{
		catalog:   cat,
		invoices:  inv,
		committer: committer,
		calc:      calc,
		storeName: storeName,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table. Split out from New so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", s.handleAddProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/barcode/{barcode}", s.handleGetByBarcode).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", s.handleUpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id:[0-9]+}", s.handleDeleteProduct).Methods(http.MethodDelete)
	api.HandleFunc("/invoices", s.handleCheckout).Methods(http.MethodPost)
	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id:[0-9]+}", s.handleGetInvoice).Methods(http.MethodGet)

	return s.logMiddleware(r)
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.http.Addr).Info("HTTP server listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Rate returns the configured tax rate, for receipt rendering.
func (s *Server) rate() decimal.Decimal {
	return s.calc.Rate()
}
