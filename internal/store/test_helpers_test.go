package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mlaurent/superette/internal/catalog"
)

// openTestStore opens a fresh database in a temp directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testProduct(barcode, name, price string, stock int) catalog.Product {
	return catalog.Product{
		Barcode:  barcode,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Test",
		Stock:    stock,
	}
}

// insertTestProduct inserts a product and returns it with its id set.
func insertTestProduct(t *testing.T, s interface {
	InsertProduct(ctx context.Context, p *catalog.Product) (int64, error)
}, barcode, name, price string, stock int) catalog.Product {
	t.Helper()

	p := testProduct(barcode, name, price, stock)
	if _, err := s.InsertProduct(context.Background(), &p); err != nil {
		t.Fatalf("InsertProduct(%q) failed: %v", barcode, err)
	}
	return p
}
