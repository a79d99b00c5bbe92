package store

import (
	"context"
	"time"

	"github.com/mlaurent/superette/internal/invoice"
)

// SaveInvoice persists one completed sale in a single transaction:
// the invoice header, one row per item, and a stock decrement per item.
// A failure at any step rolls the whole sale back; a partially committed
// invoice is never visible.
//
// Stock is decremented without a floor check, so an oversold sale drives
// stock negative. A referenced product that no longer exists aborts the
// transaction with NOT_FOUND.
func (s *Store) SaveInvoice(ctx context.Context, inv *invoice.Invoice, items []invoice.Item) (int64, error) {
	const op = "save invoice"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, mapSQLiteError(op, err)
	}
	defer tx.Rollback() // No-op if committed

	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO invoices (invoice_number, subtotal, tax, total, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, inv.Number, inv.Subtotal, inv.Tax, inv.Total, createdAt)
	if err != nil {
		return 0, mapSQLiteError(op, err)
	}

	invoiceID, err := res.LastInsertId()
	if err != nil {
		return 0, mapSQLiteError(op, err)
	}

	for _, item := range items {
		// Decrement stock first: zero rows affected means the product is
		// gone, which must abort before the item insert trips the foreign
		// key with a less precise error.
		stockRes, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ? WHERE id = ?
		`, item.Quantity, item.ProductID)
		if err != nil {
			return 0, mapSQLiteError(op, err)
		}
		affected, err := stockRes.RowsAffected()
		if err != nil {
			return 0, mapSQLiteError(op, err)
		}
		if affected == 0 {
			return 0, notFound(op, "referenced product does not exist")
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, total_price)
			VALUES (?, ?, ?, ?, ?)
		`, invoiceID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
		if err != nil {
			return 0, mapSQLiteError(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, mapSQLiteError(op, err)
	}

	inv.ID = invoiceID
	inv.CreatedAt = createdAt
	return invoiceID, nil
}

// ListInvoices returns all committed sales, most recent first.
func (s *Store) ListInvoices(ctx context.Context) ([]invoice.Invoice, error) {
	const op = "list invoices"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_number, subtotal, tax, total, created_at
		FROM invoices
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	defer rows.Close()

	var invoices []invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, mapSQLiteError(op, err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(op, err)
	}

	if invoices == nil {
		invoices = []invoice.Invoice{}
	}

	return invoices, nil
}

// GetInvoice returns the invoice header with the given id, or NOT_FOUND.
func (s *Store) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	const op = "get invoice"

	var inv invoice.Invoice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, invoice_number, subtotal, tax, total, created_at
		FROM invoices
		WHERE id = ?
	`, id).Scan(&inv.ID, &inv.Number, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.CreatedAt)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}

	return &inv, nil
}

// InvoiceItems returns the line items of one invoice in insertion order.
func (s *Store) InvoiceItems(ctx context.Context, invoiceID int64) ([]invoice.Item, error) {
	const op = "list invoice items"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, quantity, unit_price, total_price
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id ASC
	`, invoiceID)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	defer rows.Close()

	var items []invoice.Item
	for rows.Next() {
		var it invoice.Item
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, mapSQLiteError(op, err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(op, err)
	}

	if items == nil {
		items = []invoice.Item{}
	}

	return items, nil
}
