// Package invoice defines committed sales: the immutable invoice header,
// its line items with snapshotted prices, and the committer that turns a
// cart snapshot into an atomically persisted sale.
package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the header of a completed sale. Once committed it is never
// mutated; totals are the values computed at commit time.
type Invoice struct {
	ID        int64           `json:"id"`
	Number    string          `json:"invoice_number"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// Item is one line of a committed invoice. UnitPrice is the product's price
// at the time of sale, not a live reference; TotalPrice is always
// quantity × UnitPrice.
type Item struct {
	ID         int64           `json:"id"`
	InvoiceID  int64           `json:"invoice_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Store is the invoice persistence contract.
//
// SaveInvoice must apply the header insert, every item insert and every
// stock decrement in one atomic scope: a failure anywhere leaves the store
// exactly as it was before the call.
type Store interface {
	SaveInvoice(ctx context.Context, inv *Invoice, items []Item) (int64, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	InvoiceItems(ctx context.Context, invoiceID int64) ([]Item, error)
}

// Clock supplies millisecond timestamps for invoice numbers. Injected so
// tests get deterministic, collision-free numbers.
type Clock interface {
	NowMillis() int64
}

// SystemClock is the production Clock backed by wall time.
type SystemClock struct{}

func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Number formats a millisecond timestamp as an invoice number.
func Number(millis int64) string {
	return fmt.Sprintf("INV-%d", millis)
}
