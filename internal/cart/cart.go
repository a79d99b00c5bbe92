// Package cart holds the in-memory state of one checkout session.
//
// A cart is owned by exactly one session (one till, one operator) and is
// discarded after the sale is committed or cancelled. It never persists
// anything itself; the invoice committer takes a snapshot of its lines.
package cart

import (
	"context"
	"errors"

	"github.com/mlaurent/superette/internal/catalog"
)

var ErrNegativeQuantity = errors.New("cart quantity cannot be negative")

// Resolver looks up a product by barcode. Satisfied by any catalog store.
type Resolver interface {
	GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error)
}

// Line is one (product, quantity) pairing in the session.
// The product is the snapshot taken when the barcode was first scanned;
// prices are re-read from the catalog at commit time.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart accumulates scanned lines, merged by product ID.
// Not safe for concurrent use; each session owns its cart exclusively.
type Cart struct {
	resolver Resolver
	lines    []Line
}

func New(r Resolver) *Cart {
	return &Cart{resolver: r}
}

// Scan resolves a barcode against the catalog and adds it to the cart.
// Scanning a product already in the cart increments its quantity instead of
// appending a duplicate line. A barcode with no matching product returns the
// resolver's not-found error; the cart is left unchanged.
func (c *Cart) Scan(ctx context.Context, barcode string) (*Line, error) {
	p, err := c.resolver.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity++
			line := c.lines[i]
			return &line, nil
		}
	}

	c.lines = append(c.lines, Line{Product: *p, Quantity: 1})
	line := c.lines[len(c.lines)-1]
	return &line, nil
}

// SetQuantity sets the quantity of an existing line. A quantity of zero
// removes the line, making SetQuantity(id, 0) equivalent to Remove(id).
// Unknown product IDs are a no-op.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	if qty < 0 {
		return ErrNegativeQuantity
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = qty
			return nil
		}
	}
	return nil
}

// Remove deletes the line for the given product, preserving the order of
// the remaining lines. Removing an absent product is a no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Called after invoice finalization or when the
// operator cancels the session.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current lines in scan order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
