// Package seed loads product catalogs into the store: either the built-in
// default catalog or an operator-supplied CUE file validated against an
// embedded schema before a single row is written.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/shopspring/decimal"

	"github.com/mlaurent/superette/internal/catalog"
)

//go:embed schema.cue
var schemaCUE string

// LoadError is a seed-file validation failure with CUE position info.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadFile reads a CUE catalog file, unifies it with the embedded schema
// and returns the declared products. Nothing is persisted; pair with Apply.
func LoadFile(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parse(path, data)
}

func parse(filename string, data []byte) ([]catalog.Product, error) {
	cuectx := cuecontext.New()

	schema := cuectx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	val := cuectx.CompileBytes(data, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var decoded struct {
		Products []struct {
			Barcode  string `json:"barcode"`
			Name     string `json:"name"`
			Price    string `json:"price"`
			Category string `json:"category"`
			Stock    int    `json:"stock"`
		} `json:"products"`
	}
	if err := unified.Decode(&decoded); err != nil {
		return nil, formatCUEError(err)
	}

	products := make([]catalog.Product, 0, len(decoded.Products))
	for _, raw := range decoded.Products {
		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q: parse price %q: %w", raw.Barcode, raw.Price, err)
		}
		p := catalog.Product{
			Barcode:  raw.Barcode,
			Name:     raw.Name,
			Price:    price,
			Category: raw.Category,
			Stock:    raw.Stock,
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %q: %w", raw.Barcode, err)
		}
		products = append(products, p)
	}

	return products, nil
}

// Defaults returns the starter catalog shipped with the application.
func Defaults() []catalog.Product {
	defaults := []struct {
		barcode, name, price, category string
		stock                          int
	}{
		{"1234567890123", "Pain de mie", "2.50", "Boulangerie", 50},
		{"2345678901234", "Lait 1L", "1.20", "Produits laitiers", 30},
		{"3456789012345", "Bananes (kg)", "2.80", "Fruits", 25},
		{"4567890123456", "Eau 1.5L", "0.80", "Boissons", 100},
		{"5678901234567", "Yaourt nature", "3.20", "Produits laitiers", 40},
		{"6789012345678", "Pommes (kg)", "3.50", "Fruits", 20},
		{"7890123456789", "Coca-Cola 33cl", "1.50", "Boissons", 60},
		{"8901234567890", "Baguette", "1.10", "Boulangerie", 15},
	}

	products := make([]catalog.Product, 0, len(defaults))
	for _, d := range defaults {
		products = append(products, catalog.Product{
			Barcode:  d.barcode,
			Name:     d.name,
			Price:    decimal.RequireFromString(d.price),
			Category: d.category,
			Stock:    d.stock,
		})
	}
	return products
}

// Apply inserts the given products into the catalog. Barcodes that already
// exist are skipped rather than treated as failures, so re-seeding an
// initialized store is safe. Returns the inserted and skipped counts.
func Apply(ctx context.Context, store catalog.Store, products []catalog.Product) (inserted, skipped int, err error) {
	for i := range products {
		p := products[i]
		if _, err := store.InsertProduct(ctx, &p); err != nil {
			if isConstraintViolation(err) {
				skipped++
				continue
			}
			return inserted, skipped, fmt.Errorf("seed product %q: %w", p.Barcode, err)
		}
		inserted++
	}
	return inserted, skipped, nil
}

func isConstraintViolation(err error) bool {
	var ce interface{ ConstraintViolation() bool }
	return errors.As(err, &ce) && ce.ConstraintViolation()
}

// formatCUEError extracts the first positioned error from a CUE error list.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &LoadError{Message: first.Error(), Pos: positions[0]}
	}

	return err
}
