package receipt

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/invoice"
)

// Build assembles receipt data for a committed invoice, resolving product
// names through the catalog. A product deleted since the sale keeps its
// line; the name degrades to its identifier, the snapshotted prices stand.
func Build(ctx context.Context, cat catalog.Store, storeName string, rate decimal.Decimal, inv *invoice.Invoice, items []invoice.Item) Data {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		name := fmt.Sprintf("Produit #%d", item.ProductID)
		if p, err := cat.GetProduct(ctx, item.ProductID); err == nil {
			name = p.Name
		}
		lines = append(lines, Line{
			Name:       name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}

	return Data{
		StoreName: storeName,
		Number:    inv.Number,
		CreatedAt: inv.CreatedAt,
		Lines:     lines,
		Subtotal:  inv.Subtotal,
		Tax:       inv.Tax,
		TaxRate:   rate,
		Total:     inv.Total,
	}
}
