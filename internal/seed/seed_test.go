package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/superette/internal/store"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	products := Defaults()
	require.Len(t, products, 8)

	byBarcode := make(map[string]int)
	for _, p := range products {
		byBarcode[p.Barcode]++
		assert.NoError(t, p.Validate(), "default product %q must be valid", p.Barcode)
		assert.True(t, p.Price.GreaterThan(decimal.Zero), "default product %q must have a positive price", p.Barcode)
		assert.Greater(t, p.Stock, 0, "default product %q must have stock", p.Barcode)
	}
	assert.Len(t, byBarcode, 8, "default barcodes must be unique")

	first := products[0]
	assert.Equal(t, "1234567890123", first.Barcode)
	assert.Equal(t, "Pain de mie", first.Name)
	assert.Equal(t, "2.50", first.Price.StringFixed(2))
	assert.Equal(t, "Boulangerie", first.Category)
	assert.Equal(t, 50, first.Stock)
}

func TestLoadFile(t *testing.T) {
	path := writeSeedFile(t, `
products: [
	{barcode: "1234567890123", name: "Pain de mie", price: "2.50", category: "Boulangerie", stock: 50},
	{barcode: "2345678901234", name: "Lait 1L", price: "1.20"},
]
`)

	products, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Pain de mie", products[0].Name)
	assert.Equal(t, "2.50", products[0].Price.StringFixed(2))
	assert.Equal(t, 50, products[0].Stock)

	// Optional fields fall back to the schema defaults.
	assert.Equal(t, "", products[1].Category)
	assert.Equal(t, 0, products[1].Stock)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
}

func TestLoadFile_InvalidBarcode(t *testing.T) {
	path := writeSeedFile(t, `
products: [
	{barcode: "abc", name: "Pain de mie", price: "2.50"},
]
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "barcode")
}

func TestLoadFile_InvalidSyntaxReportsPosition(t *testing.T) {
	path := writeSeedFile(t, "products: [\n\t{barcode: }\n]\n")

	_, err := LoadFile(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, loadErr.Pos.IsValid(), "error should carry a file position")
	assert.Contains(t, loadErr.Error(), "catalog.cue")
}

func TestLoadFile_NegativeStock(t *testing.T) {
	path := writeSeedFile(t, `
products: [
	{barcode: "1234567890123", name: "Pain de mie", price: "2.50", stock: -1},
]
`)

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_MalformedPrice(t *testing.T) {
	path := writeSeedFile(t, `
products: [
	{barcode: "1234567890123", name: "Pain de mie", price: "deux euros"},
]
`)

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	inserted, skipped, err := Apply(ctx, m, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 8, inserted)
	assert.Equal(t, 0, skipped)

	products, err := m.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 8)
}

func TestApply_SkipsExistingBarcodes(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	_, _, err := Apply(ctx, m, Defaults())
	require.NoError(t, err)

	// Re-seeding an initialized store inserts nothing and fails nothing.
	inserted, skipped, err := Apply(ctx, m, Defaults())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 8, skipped)

	products, err := m.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 8)
}
