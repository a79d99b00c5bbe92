// Package catalog defines the product catalog domain: the Product record,
// input validation, and the storage contract the rest of the system
// consumes for catalog access.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrBarcodeRequired = errors.New("product barcode is required")
	ErrNameRequired    = errors.New("product name is required")
	ErrNegativePrice   = errors.New("product price cannot be negative")
	ErrNegativeStock   = errors.New("product stock cannot be negative")
)

// Product is one catalog entry, keyed by rowid with a unique barcode.
// Price is exact decimal; binary floats are never used for money.
type Product struct {
	ID        int64           `json:"id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is the catalog persistence contract. Both the SQLite and the
// in-memory backends implement it; the implementation is chosen once at
// startup, never per call.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	InsertProduct(ctx context.Context, p *Product) (int64, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// Normalize trims surrounding whitespace and applies NFC normalization to
// the text fields. Barcodes arrive from scanners and keyboards; two visually
// identical inputs must resolve to the same catalog row.
func (p *Product) Normalize() {
	p.Barcode = norm.NFC.String(strings.TrimSpace(p.Barcode))
	p.Name = norm.NFC.String(strings.TrimSpace(p.Name))
	p.Category = norm.NFC.String(strings.TrimSpace(p.Category))
}

// Validate checks the invariants required before a product is persisted.
// Callers normalize first; Validate does not mutate.
func (p *Product) Validate() error {
	if p.Barcode == "" {
		return ErrBarcodeRequired
	}
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}
