// Package receipt renders a committed sale as a fixed-width text receipt,
// suitable for a terminal, a print dialog or a reprint from history.
// The layout is deterministic and covered by golden tests.
package receipt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// width is the column width of a till roll.
const width = 40

// Line is one rendered item: name on its own row, then quantity × unit
// price on the left and the line total right-aligned.
type Line struct {
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Data is everything a receipt shows. All amounts are the committed
// invoice's snapshotted values; nothing is recomputed at render time.
type Data struct {
	StoreName string
	Number    string
	CreatedAt time.Time
	Lines     []Line
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	TaxRate   decimal.Decimal
	Total     decimal.Decimal
}

// Render produces the complete receipt, one trailing newline included.
func Render(d Data) string {
	rule := strings.Repeat("=", width)
	thin := strings.Repeat("-", width)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(center(d.StoreName) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("Facture : " + d.Number + "\n")
	b.WriteString("Date    : " + d.CreatedAt.Format("02/01/2006 15:04") + "\n")
	b.WriteString(thin + "\n")

	for _, l := range d.Lines {
		b.WriteString(l.Name + "\n")
		left := fmt.Sprintf("  %d x %s", l.Quantity, l.UnitPrice.StringFixed(2))
		b.WriteString(row(left, l.TotalPrice.StringFixed(2)) + "\n")
	}

	b.WriteString(thin + "\n")
	b.WriteString(row("Sous-total", d.Subtotal.StringFixed(2)) + "\n")
	b.WriteString(row(taxLabel(d.TaxRate), d.Tax.StringFixed(2)) + "\n")
	b.WriteString(row("TOTAL", d.Total.StringFixed(2)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(center("Merci de votre visite !") + "\n")
	b.WriteString(rule + "\n")
	return b.String()
}

func taxLabel(rate decimal.Decimal) string {
	return "TVA " + rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// row left-aligns label and right-aligns amount on one line. Padding counts
// runes, not bytes; product names carry accents.
func row(label, amount string) string {
	pad := width - utf8.RuneCountInString(label) - utf8.RuneCountInString(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount
}

func center(s string) string {
	pad := (width - utf8.RuneCountInString(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
