package store

import (
	"context"
	"time"

	"github.com/mlaurent/superette/internal/catalog"
)

// ListProducts returns the whole catalog ordered by name, with id as a
// deterministic tiebreak.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	const op = "list products"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, barcode, name, price, category, stock, created_at
		FROM products
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapSQLiteError(op, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(op, err)
	}

	// Return empty slice instead of nil
	if products == nil {
		products = []catalog.Product{}
	}

	return products, nil
}

// GetProduct returns the product with the given id, or NOT_FOUND.
func (s *Store) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	const op = "get product"

	row := s.db.QueryRowContext(ctx, `
		SELECT id, barcode, name, price, category, stock, created_at
		FROM products
		WHERE id = ?
	`, id)

	p, err := scanProduct(row)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	return &p, nil
}

// GetProductByBarcode resolves the unique barcode to a product, or
// NOT_FOUND.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	const op = "get product by barcode"

	row := s.db.QueryRowContext(ctx, `
		SELECT id, barcode, name, price, category, stock, created_at
		FROM products
		WHERE barcode = ?
	`, barcode)

	p, err := scanProduct(row)
	if err != nil {
		return nil, mapSQLiteError(op, err)
	}
	return &p, nil
}

// InsertProduct adds a product and returns its id. A duplicate barcode is a
// CONSTRAINT_VIOLATION and leaves the existing row untouched.
func (s *Store) InsertProduct(ctx context.Context, p *catalog.Product) (int64, error) {
	const op = "insert product"

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (barcode, name, price, category, stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Barcode, p.Name, p.Price, p.Category, p.Stock, createdAt)
	if err != nil {
		return 0, mapSQLiteError(op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapSQLiteError(op, err)
	}

	p.ID = id
	p.CreatedAt = createdAt
	return id, nil
}

// UpdateProduct rewrites all mutable fields of the product identified by
// p.ID. Updating a missing product is NOT_FOUND; changing the barcode to
// one already taken is a CONSTRAINT_VIOLATION.
func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	const op = "update product"

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET barcode = ?, name = ?, price = ?, category = ?, stock = ?
		WHERE id = ?
	`, p.Barcode, p.Name, p.Price, p.Category, p.Stock, p.ID)
	if err != nil {
		return mapSQLiteError(op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLiteError(op, err)
	}
	if affected == 0 {
		return notFound(op, "product does not exist")
	}

	return nil
}

// DeleteProduct removes the product with the given id, or NOT_FOUND.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	const op = "delete product"

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapSQLiteError(op, err)
	}
	if affected == 0 {
		return notFound(op, "product does not exist")
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Category, &p.Stock, &p.CreatedAt)
	return p, err
}
