package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlaurent/superette/internal/catalog"
	"github.com/mlaurent/superette/internal/invoice"
)

// Memory is the in-memory backend, used where no writable disk is
// available (the original application's non-desktop fallback). It
// implements the same contracts as the SQLite store, including the
// all-or-nothing invoice save: every write is validated completely before
// any state is touched.
//
// Unlike Cart, Memory is shared by concurrent HTTP handlers and guards its
// state with a mutex.
type Memory struct {
	mu sync.Mutex

	nextProductID int64
	nextInvoiceID int64
	nextItemID    int64

	products  map[int64]catalog.Product
	byBarcode map[string]int64

	invoices map[int64]invoice.Invoice
	byNumber map[string]int64
	items    map[int64][]invoice.Item
}

func NewMemory() *Memory {
	return &Memory{
		products:  make(map[int64]catalog.Product),
		byBarcode: make(map[string]int64),
		invoices:  make(map[int64]invoice.Invoice),
		byNumber:  make(map[string]int64),
		items:     make(map[int64][]invoice.Item),
	}
}

// Close exists so both backends share a lifecycle. It is a no-op.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, notFound("get product", "product does not exist")
	}
	return &p, nil
}

func (m *Memory) GetProductByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byBarcode[barcode]
	if !ok {
		return nil, notFound("get product by barcode", "no product with this barcode")
	}
	p := m.products[id]
	return &p, nil
}

func (m *Memory) InsertProduct(ctx context.Context, p *catalog.Product) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byBarcode[p.Barcode]; exists {
		return 0, constraintViolation("insert product", "barcode already exists", nil)
	}

	m.nextProductID++
	stored := *p
	stored.ID = m.nextProductID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	m.products[stored.ID] = stored
	m.byBarcode[stored.Barcode] = stored.ID

	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.products[p.ID]
	if !ok {
		return notFound("update product", "product does not exist")
	}
	if other, taken := m.byBarcode[p.Barcode]; taken && other != p.ID {
		return constraintViolation("update product", "barcode already exists", nil)
	}

	stored := *p
	stored.CreatedAt = current.CreatedAt

	delete(m.byBarcode, current.Barcode)
	m.products[stored.ID] = stored
	m.byBarcode[stored.Barcode] = stored.ID
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return notFound("delete product", "product does not exist")
	}
	delete(m.products, id)
	delete(m.byBarcode, p.Barcode)
	return nil
}

// SaveInvoice applies the header, items and stock decrements atomically:
// every referenced product and the number's uniqueness are checked before
// the first mutation, so a failed save leaves the store untouched.
func (m *Memory) SaveInvoice(ctx context.Context, inv *invoice.Invoice, items []invoice.Item) (int64, error) {
	const op = "save invoice"

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byNumber[inv.Number]; exists {
		return 0, constraintViolation(op, "invoice number already exists", nil)
	}
	for _, item := range items {
		if _, ok := m.products[item.ProductID]; !ok {
			return 0, notFound(op, "referenced product does not exist")
		}
	}

	m.nextInvoiceID++
	stored := *inv
	stored.ID = m.nextInvoiceID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	storedItems := make([]invoice.Item, 0, len(items))
	for _, item := range items {
		m.nextItemID++
		item.ID = m.nextItemID
		item.InvoiceID = stored.ID
		storedItems = append(storedItems, item)

		p := m.products[item.ProductID]
		p.Stock -= item.Quantity
		m.products[item.ProductID] = p
	}

	m.invoices[stored.ID] = stored
	m.byNumber[stored.Number] = stored.ID
	m.items[stored.ID] = storedItems

	inv.ID = stored.ID
	inv.CreatedAt = stored.CreatedAt
	return stored.ID, nil
}

func (m *Memory) ListInvoices(ctx context.Context) ([]invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	invoices := make([]invoice.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		invoices = append(invoices, inv)
	}
	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
		}
		return invoices[i].ID > invoices[j].ID
	})
	return invoices, nil
}

func (m *Memory) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[id]
	if !ok {
		return nil, notFound("get invoice", "invoice does not exist")
	}
	return &inv, nil
}

func (m *Memory) InvoiceItems(ctx context.Context, invoiceID int64) ([]invoice.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]invoice.Item, len(m.items[invoiceID]))
	copy(items, m.items[invoiceID])
	return items, nil
}
