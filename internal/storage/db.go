package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jyelen1110/Alfies-sub000/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_items (
  id TEXT NOT NULL,
  tenant TEXT NOT NULL,
  name TEXT NOT NULL,
  barcode TEXT,
  sku TEXT,
  unit_price REAL NOT NULL,
  tax_rate REAL,
  status TEXT NOT NULL DEFAULT 'active',
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(tenant, id)
);
CREATE INDEX IF NOT EXISTS idx_catalog_items_tenant_status ON catalog_items(tenant, status);

CREATE TABLE IF NOT EXISTS customers (
  id TEXT NOT NULL,
  tenant TEXT NOT NULL,
  business_name TEXT,
  contact_name TEXT,
  full_name TEXT,
  email TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(tenant, id)
);

CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  tenant TEXT NOT NULL,
  number TEXT,
  customer_id TEXT,
  order_date TEXT,
  notes TEXT NOT NULL DEFAULT '',
  subtotal REAL NOT NULL DEFAULT 0,
  tax REAL NOT NULL DEFAULT 0,
  total REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_tenant ON orders(tenant);

CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price REAL NOT NULL,
  quantity INTEGER NOT NULL,
  tax_rate REAL NOT NULL,
  line_total REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(order_id) REFERENCES orders(id)
);
CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);

CREATE TABLE IF NOT EXISTS aliases (
  tenant TEXT NOT NULL,
  normalized_name TEXT NOT NULL,
  item_id TEXT NOT NULL,
  original_text TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(tenant, normalized_name)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertCatalogItems(ctx context.Context, items []internal.CatalogItem) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO catalog_items (id, tenant, name, barcode, sku, unit_price, tax_rate, status, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(tenant, id) DO UPDATE SET
  name=excluded.name,
  barcode=excluded.barcode,
  sku=excluded.sku,
  unit_price=excluded.unit_price,
  tax_rate=excluded.tax_rate,
  status=excluded.status,
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Tenant, item.Name, item.Barcode, item.SKU, item.UnitPrice, item.TaxRate, string(item.Status)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListActiveCatalogItems(ctx context.Context, tenant string) ([]internal.CatalogItem, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, tenant, name, barcode, sku, unit_price, tax_rate, status
FROM catalog_items WHERE tenant = ? AND status = 'active' ORDER BY id ASC
`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogItem
	for rows.Next() {
		var item internal.CatalogItem
		var status string
		if err := rows.Scan(&item.ID, &item.Tenant, &item.Name, &item.Barcode, &item.SKU, &item.UnitPrice, &item.TaxRate, &status); err != nil {
			return nil, err
		}
		item.Status = internal.ItemStatus(status)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (d *DB) GetCatalogItem(ctx context.Context, tenant, id string) (*internal.CatalogItem, error) {
	var item internal.CatalogItem
	var status string
	err := d.conn.QueryRowContext(ctx, `
SELECT id, tenant, name, barcode, sku, unit_price, tax_rate, status
FROM catalog_items WHERE tenant = ? AND id = ?
`, tenant, id).Scan(&item.ID, &item.Tenant, &item.Name, &item.Barcode, &item.SKU, &item.UnitPrice, &item.TaxRate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.Status = internal.ItemStatus(status)
	return &item, nil
}

func (d *DB) UpsertCustomers(ctx context.Context, records []internal.CustomerRecord) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO customers (id, tenant, business_name, contact_name, full_name, email, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(tenant, id) DO UPDATE SET
  business_name=excluded.business_name,
  contact_name=excluded.contact_name,
  full_name=excluded.full_name,
  email=excluded.email,
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Tenant, rec.BusinessName, rec.ContactName, rec.FullName, rec.Email); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListCustomers(ctx context.Context, tenant string) ([]internal.CustomerRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, tenant, business_name, contact_name, full_name, email
FROM customers WHERE tenant = ? ORDER BY id ASC
`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CustomerRecord
	for rows.Next() {
		var rec internal.CustomerRecord
		if err := rows.Scan(&rec.ID, &rec.Tenant, &rec.BusinessName, &rec.ContactName, &rec.FullName, &rec.Email); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LoadAliases returns the tenant's alias snapshot keyed by normalized name.
func (d *DB) LoadAliases(ctx context.Context, tenant string) (map[string]string, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT normalized_name, item_id FROM aliases WHERE tenant = ?`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, itemID string
		if err := rows.Scan(&name, &itemID); err != nil {
			return nil, err
		}
		out[name] = itemID
	}
	return out, rows.Err()
}

// UpsertAlias is last-write-wins on (tenant, normalized_name): teaching the
// engine a new association for a known name replaces the old one, never
// duplicates it.
func (d *DB) UpsertAlias(ctx context.Context, alias internal.Alias) error {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO aliases (tenant, normalized_name, item_id, original_text)
VALUES (?, ?, ?, ?)
ON CONFLICT(tenant, normalized_name) DO UPDATE SET
  item_id=excluded.item_id,
  original_text=excluded.original_text,
  createdAt=CURRENT_TIMESTAMP
`, alias.Tenant, alias.NormalizedName, alias.ItemID, alias.OriginalText)
	return err
}

// CreateOrderWithLines is the import pipeline's single batch submission.
func (d *DB) CreateOrderWithLines(ctx context.Context, order internal.Order, lines []internal.OrderLine) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id, tenant, number, customer_id, order_date, notes, subtotal, tax, total, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, order.ID, order.Tenant, order.Number, order.CustomerID, order.OrderDate, order.Notes, order.Subtotal, order.Tax, order.Total, order.Status); err != nil {
		return err
	}

	for _, line := range lines {
		if err := insertOrderLine(ctx, tx, line); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertOrderLine(ctx context.Context, line internal.OrderLine) error {
	return insertOrderLine(ctx, d.conn, line)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrderLine(ctx context.Context, ex execer, line internal.OrderLine) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO order_lines (id, order_id, item_id, name, unit_price, quantity, tax_rate, line_total)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, line.ID, line.OrderID, line.ItemID, line.Name, line.UnitPrice, line.Quantity, line.TaxRate, line.LineTotal)
	return err
}

// AddOrderTotals applies an incremental totals update. Column references on
// the right-hand side read the pre-update values, so total is derived from
// the old subtotal and tax plus both deltas.
func (d *DB) AddOrderTotals(ctx context.Context, orderID string, subtotalDelta, taxDelta float64) error {
	result, err := d.conn.ExecContext(ctx, `
UPDATE orders SET
  subtotal = ROUND(subtotal + ?, 2),
  tax = ROUND(tax + ?, 2),
  total = ROUND(subtotal + ? + tax + ?, 2)
WHERE id = ?
`, subtotalDelta, taxDelta, subtotalDelta, taxDelta, orderID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order not found: %s", orderID)
	}
	return nil
}

func (d *DB) UpdateOrderNotes(ctx context.Context, orderID, notes string) error {
	_, err := d.conn.ExecContext(ctx, `UPDATE orders SET notes = ? WHERE id = ?`, notes, orderID)
	return err
}

func (d *DB) GetOrder(ctx context.Context, id string) (*internal.Order, error) {
	var order internal.Order
	err := d.conn.QueryRowContext(ctx, `
SELECT id, tenant, number, customer_id, order_date, notes, subtotal, tax, total, status
FROM orders WHERE id = ?
`, id).Scan(&order.ID, &order.Tenant, &order.Number, &order.CustomerID, &order.OrderDate, &order.Notes, &order.Subtotal, &order.Tax, &order.Total, &order.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) MustOrder(ctx context.Context, id string) (internal.Order, error) {
	order, err := d.GetOrder(ctx, id)
	if err != nil {
		return internal.Order{}, err
	}
	if order == nil {
		return internal.Order{}, fmt.Errorf("order not found: %s", id)
	}
	return *order, nil
}

func (d *DB) ListOrderLines(ctx context.Context, orderID string) ([]internal.OrderLine, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, order_id, item_id, name, unit_price, quantity, tax_rate, line_total
FROM order_lines WHERE order_id = ? ORDER BY createdAt ASC, id ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.OrderLine
	for rows.Next() {
		var line internal.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.Name, &line.UnitPrice, &line.Quantity, &line.TaxRate, &line.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}
