package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlaurent/superette/internal/cart"
	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/pricing"
)

var (
	ErrEmptyCart       = errors.New("cannot commit an empty cart")
	ErrInvalidQuantity = errors.New("invoice line quantity must be positive")
)

// numberRetries bounds invoice-number regeneration on uniqueness collisions.
// Numbers are millisecond-derived, so a collision means two commits inside
// the same millisecond; one regeneration is normally enough.
const numberRetries = 3

// Committer turns a cart snapshot into a persisted invoice.
//
// Totals are always recomputed here from current catalog prices; values a
// caller may have displayed are never trusted. Stock is decremented without
// a floor check, so an oversold commit drives stock negative (recorded
// behavior of the till, see DESIGN.md).
type Committer struct {
	catalog catalog.Store
	store   Store
	calc    pricing.Calculator
	clock   Clock
}

func NewCommitter(cat catalog.Store, st Store, calc pricing.Calculator, clock Clock) *Committer {
	return &Committer{catalog: cat, store: st, calc: calc, clock: clock}
}

// Commit persists the given cart lines as one invoice.
//
// For each line the product is re-read from the catalog, so the snapshotted
// unit price is the price at commit time. A product that no longer exists
// aborts the whole commit with the store's not-found error. On an
// invoice-number collision the number is regenerated and the save retried a
// bounded number of times.
func (c *Committer) Commit(ctx context.Context, lines []cart.Line) (*Invoice, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]cart.Line, 0, len(lines))
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d has quantity %d", ErrInvalidQuantity, l.Product.ID, l.Quantity)
		}
		p, err := c.catalog.GetProduct(ctx, l.Product.ID)
		if err != nil {
			return nil, fmt.Errorf("commit invoice: %w", err)
		}
		snapshot = append(snapshot, cart.Line{Product: *p, Quantity: l.Quantity})
		items = append(items, Item{
			ProductID:  p.ID,
			Quantity:   l.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: pricing.LineTotal(p.Price, l.Quantity),
		})
	}

	totals := c.calc.Compute(snapshot)

	var lastErr error
	millis := c.clock.NowMillis()
	for attempt := 0; attempt <= numberRetries; attempt++ {
		inv := &Invoice{
			Number:    Number(millis),
			Subtotal:  totals.Subtotal,
			Tax:       totals.Tax,
			Total:     totals.Total,
			CreatedAt: time.UnixMilli(millis).UTC(),
		}

		id, err := c.store.SaveInvoice(ctx, inv, items)
		if err == nil {
			inv.ID = id
			return inv, nil
		}
		if !isConstraintViolation(err) {
			return nil, fmt.Errorf("commit invoice: %w", err)
		}

		lastErr = err
		// Collision on the unique invoice number: take a fresh timestamp,
		// bumping by one millisecond if the clock has not advanced.
		next := c.clock.NowMillis()
		if next <= millis {
			next = millis + 1
		}
		millis = next
	}

	return nil, fmt.Errorf("commit invoice: number generation exhausted after %d retries: %w", numberRetries, lastErr)
}

// isConstraintViolation matches store errors that report a uniqueness or
// foreign-key conflict, without this package depending on a concrete store.
func isConstraintViolation(err error) bool {
	var ce interface{ ConstraintViolation() bool }
	return errors.As(err, &ce) && ce.ConstraintViolation()
}
