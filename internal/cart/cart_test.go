package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaurent/superette/internal/cart"
	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/store"
)

// fakeResolver resolves barcodes from a fixed map, mimicking the store's
// not-found behavior for everything else.
type fakeResolver struct {
	products map[string]catalog.Product
}

func (f *fakeResolver) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	p, ok := f.products[barcode]
	if !ok {
		return nil, &store.StoreError{Code: store.CodeNotFound, Op: "get product by barcode", Message: "no product with this barcode"}
	}
	return &p, nil
}

func newTestCart() (*cart.Cart, *fakeResolver) {
	r := &fakeResolver{products: map[string]catalog.Product{
		"1234567890123": {ID: 1, Barcode: "1234567890123", Name: "Pain de mie", Price: decimal.RequireFromString("2.50"), Stock: 50},
		"2345678901234": {ID: 2, Barcode: "2345678901234", Name: "Lait 1L", Price: decimal.RequireFromString("1.20"), Stock: 30},
	}}
	return cart.New(r), r
}

func TestScan_MergesRepeatedBarcode(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		line, err := c.Scan(ctx, "1234567890123")
		require.NoError(t, err)
		assert.Equal(t, i+1, line.Quantity)
	}

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, n, lines[0].Quantity)
}

func TestScan_AppendsInScanOrder(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()

	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)
	_, err = c.Scan(ctx, "2345678901234")
	require.NoError(t, err)
	_, err = c.Scan(ctx, "1234567890123")
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "Pain de mie", lines[0].Product.Name)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Lait 1L", lines[1].Product.Name)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestScan_UnknownBarcodeLeavesCartUnchanged(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()

	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)

	_, err = c.Scan(ctx, "0000000000000")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
	assert.Len(t, c.Lines(), 1)
}

func TestSetQuantity(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()
	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)

	t.Run("sets the quantity", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(1, 7))
		assert.Equal(t, 7, c.Lines()[0].Quantity)
	})

	t.Run("zero is equivalent to remove", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(1, 0))
		assert.True(t, c.IsEmpty())
	})

	t.Run("negative is rejected", func(t *testing.T) {
		assert.ErrorIs(t, c.SetQuantity(1, -1), cart.ErrNegativeQuantity)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		require.NoError(t, c.SetQuantity(99, 3))
		assert.True(t, c.IsEmpty())
	})
}

func TestRemove(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()
	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)
	_, err = c.Scan(ctx, "2345678901234")
	require.NoError(t, err)

	c.Remove(1)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Product.ID)

	// Removing again is a no-op.
	c.Remove(1)
	assert.Len(t, c.Lines(), 1)
}

func TestClear(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()
	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
}

func TestLines_ReturnsACopy(t *testing.T) {
	c, _ := newTestCart()
	ctx := context.Background()
	_, err := c.Scan(ctx, "1234567890123")
	require.NoError(t, err)

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
