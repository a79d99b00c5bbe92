package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mlaurent/superette/internal/cart"
	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/invoice"
	"github.com/mlaurent/superette/internal/receipt"
	"github.com/mlaurent/superette/internal/store"
)

// response is the JSON envelope every endpoint uses: the same
// success/data/error shape the desktop front end already consumes.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// productRequest is the write payload for product create and update.
type productRequest struct {
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
}

// checkoutRequest carries the cart lines the till wants committed.
type checkoutRequest struct {
	Lines []checkoutLine `json:"lines"`
}

type checkoutLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// invoiceView is the read model for one committed sale.
type invoiceView struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Items   []invoice.Item   `json:"items"`
	Receipt string           `json:"receipt,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: "ok"})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: products})
}

func (s *Server) handleGetByBarcode(w http.ResponseWriter, r *http.Request) {
	barcode := mux.Vars(r)["barcode"]
	p, err := s.catalog.GetProductByBarcode(r.Context(), barcode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: p})
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid JSON body"})
		return
	}

	p := catalog.Product{
		Barcode:  req.Barcode,
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: err.Error()})
		return
	}

	if _, err := s.catalog.InsertProduct(r.Context(), &p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Success: true, Data: p})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid product id"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid JSON body"})
		return
	}

	p := catalog.Product{
		ID:       id,
		Barcode:  req.Barcode,
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: err.Error()})
		return
	}

	if err := s.catalog.UpdateProduct(r.Context(), &p); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: p})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid product id"})
		return
	}

	if err := s.catalog.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid JSON body"})
		return
	}
	if len(req.Lines) == 0 {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "checkout requires at least one line"})
		return
	}

	lines := make([]cart.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "line quantity must be positive"})
			return
		}
		lines = append(lines, cart.Line{
			Product:  catalog.Product{ID: l.ProductID},
			Quantity: l.Quantity,
		})
	}

	inv, err := s.committer.Commit(r.Context(), lines)
	if err != nil {
		if errors.Is(err, invoice.ErrEmptyCart) || errors.Is(err, invoice.ErrInvalidQuantity) {
			writeJSON(w, http.StatusBadRequest, response{Success: false, Error: err.Error()})
			return
		}
		s.writeError(w, err)
		return
	}

	items, err := s.invoices.InvoiceItems(r.Context(), inv.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Success: true, Data: invoiceView{Invoice: inv, Items: items}})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.invoices.ListInvoices(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Data: invoices})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid invoice id"})
		return
	}

	inv, err := s.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items, err := s.invoices.InvoiceItems(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	text := receipt.Render(receipt.Build(r.Context(), s.catalog, s.storeName, s.rate(), inv, items))
	writeJSON(w, http.StatusOK, response{Success: true, Data: invoiceView{Invoice: inv, Items: items, Receipt: text}})
}

// writeError maps store errors onto HTTP statuses: NOT_FOUND 404,
// CONSTRAINT_VIOLATION 409, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, response{Success: false, Error: err.Error()})
	case store.IsConstraintViolation(err):
		writeJSON(w, http.StatusConflict, response{Success: false, Error: err.Error()})
	default:
		s.logger.WithError(err).Error("storage failure")
		writeJSON(w, http.StatusInternalServerError, response{Success: false, Error: "storage error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
