// Package pricing derives checkout totals from cart lines.
//
// All arithmetic is exact decimal. Subtotals are exact sums; the tax amount
// is rounded to two decimal places (half away from zero) when it is derived,
// so the stored total always equals subtotal + tax to the cent.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mlaurent/superette/internal/cart"
)

// DefaultTaxRate is the single fixed VAT rate applied to every sale.
var DefaultTaxRate = decimal.New(20, -2) // 0.20

// Totals is the read-only pricing snapshot handed to the presentation layer
// and to the invoice committer.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculator computes totals for a fixed tax rate.
type Calculator struct {
	rate decimal.Decimal
}

func NewCalculator(rate decimal.Decimal) Calculator {
	return Calculator{rate: rate}
}

// Rate returns the calculator's tax rate.
func (c Calculator) Rate() decimal.Decimal {
	return c.rate
}

// Compute derives subtotal, tax and total from the given lines. It is a pure
// function of its input: each line contributes price × quantity at the price
// carried on the line.
func (c Calculator) Compute(lines []cart.Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Product.Price, l.Quantity))
	}
	tax := subtotal.Mul(c.rate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// LineTotal returns unitPrice × quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
