package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/ledger"
	"github.com/tradewind-erp/tradewind/internal/platform/db"
)

// ErrNumberTaken indicates a sale number collision; callers retry allocation.
var ErrNumberTaken = errors.New("pos: sale number already taken")

// Repository is the storage port of the sale transaction engine.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (*Sale, error)
}

// TxRepository exposes the operations available inside one atomic unit of
// work. Every mutating engine operation runs entirely through it.
type TxRepository interface {
	NextSaleNumber(ctx context.Context) (int64, error)
	InsertSale(ctx context.Context, sale *Sale) (int64, error)
	GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error)
	ListItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	FindItemByProduct(ctx context.Context, saleID, productID int64) (*SaleItem, error)
	InsertItem(ctx context.Context, item *SaleItem) (int64, error)
	UpdateItem(ctx context.Context, item SaleItem) error
	DeleteItem(ctx context.Context, saleID, itemID int64) error
	UpdateSaleTotals(ctx context.Context, saleID int64, subtotal, taxTotal, total decimal.Decimal) error
	MarkCompleted(ctx context.Context, saleID int64, method PaymentMethod, at time.Time) error
	InsertPayment(ctx context.Context, payment *Payment) (int64, error)
	GetProduct(ctx context.Context, productID int64) (*catalog.Product, error)
	GetProductForUpdate(ctx context.Context, productID int64) (*catalog.Product, error)
	DecrementStock(ctx context.Context, productID, quantity int64) error
	InsertMovement(ctx context.Context, movement ledger.Movement) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn inside a read-committed transaction. Readers outside the
// transaction never observe a partially updated sale; writers serialize on
// the row locks taken inside fn.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const saleColumns = `id, number, user_id, customer_id, terminal_id, status, payment_status,
	subtotal, tax_total, total, payment_method, created_at, completed_at`

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	var method *string
	err := row.Scan(&s.ID, &s.Number, &s.UserID, &s.CustomerID, &s.TerminalID, &s.Status, &s.PaymentStatus,
		&s.Subtotal, &s.TaxTotal, &s.Total, &method, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if method != nil {
		m := PaymentMethod(*method)
		s.PaymentMethod = &m
	}
	return &s, nil
}

// GetSale loads a sale with its items and payments.
func (r *repository) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	payments, err := r.listPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Payments = payments
	return sale, nil
}

// NextSaleNumber atomically increments and returns the sale counter. A
// single-row upsert keeps allocation race-free under concurrent starts.
func (r *repository) NextSaleNumber(ctx context.Context) (int64, error) {
	const query = `
		INSERT INTO sale_counters (name, last_value) VALUES ('sale_number', 1)
		ON CONFLICT (name) DO UPDATE SET last_value = sale_counters.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("pos: next sale number: %w", err)
	}
	return n, nil
}

func (r *repository) InsertSale(ctx context.Context, sale *Sale) (int64, error) {
	const query = `
		INSERT INTO sales (number, user_id, customer_id, terminal_id, status, payment_status, subtotal, tax_total, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		sale.Number, sale.UserID, sale.CustomerID, sale.TerminalID, sale.Status, sale.PaymentStatus,
		sale.Subtotal, sale.TaxTotal, sale.Total, sale.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrNumberTaken
		}
		return 0, fmt.Errorf("pos: insert sale: %w", err)
	}
	return id, nil
}

// GetSaleForUpdate locks the sale header row and loads its items. The lock
// serializes concurrent mutations of the same sale.
func (r *repository) GetSaleForUpdate(ctx context.Context, id int64) (*Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

const itemColumns = `id, sale_id, product_id, product_name, quantity, unit_price, tax_rate, discount, line_total, created_at, updated_at`

func (r *repository) ListItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("pos: list items: %w", err)
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.TaxRate, &it.Discount, &it.LineTotal, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repository) FindItemByProduct(ctx context.Context, saleID, productID int64) (*SaleItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM sale_items WHERE sale_id = $1 AND product_id = $2`, saleID, productID)
	var it SaleItem
	err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity,
		&it.UnitPrice, &it.TaxRate, &it.Discount, &it.LineTotal, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) InsertItem(ctx context.Context, item *SaleItem) (int64, error) {
	const query = `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, tax_rate, discount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		item.SaleID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.TaxRate, item.Discount, item.LineTotal,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("pos: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateItem(ctx context.Context, item SaleItem) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sale_items SET quantity = $1, discount = $2, line_total = $3, updated_at = NOW() WHERE id = $4`,
		item.Quantity, item.Discount, item.LineTotal, item.ID)
	if err != nil {
		return fmt.Errorf("pos: update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, saleID, itemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sale_items WHERE id = $1 AND sale_id = $2`, itemID, saleID)
	if err != nil {
		return fmt.Errorf("pos: delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) UpdateSaleTotals(ctx context.Context, saleID int64, subtotal, taxTotal, total decimal.Decimal) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sales SET subtotal = $1, tax_total = $2, total = $3 WHERE id = $4`,
		subtotal, taxTotal, total, saleID)
	if err != nil {
		return fmt.Errorf("pos: update totals: %w", err)
	}
	return nil
}

func (r *repository) MarkCompleted(ctx context.Context, saleID int64, method PaymentMethod, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE sales SET status = $1, payment_status = $2, payment_method = $3, completed_at = $4 WHERE id = $5`,
		SaleStatusCompleted, PaymentStatusPaid, method, at, saleID)
	if err != nil {
		return fmt.Errorf("pos: mark completed: %w", err)
	}
	return nil
}

func (r *repository) InsertPayment(ctx context.Context, payment *Payment) (int64, error) {
	const query = `
		INSERT INTO payments (sale_id, amount, method, status, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		payment.SaleID, payment.Amount, payment.Method, payment.Status, payment.Reference,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("pos: insert payment: %w", err)
	}
	return id, nil
}

func (r *repository) listPayments(ctx context.Context, saleID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, sale_id, amount, method, status, reference, created_at FROM payments WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("pos: list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.Status, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const productQuery = `SELECT id, sku, name, unit_price, tax_rate, stock, created_at, updated_at FROM products WHERE id = $1`

func (r *repository) getProduct(ctx context.Context, query string, productID int64) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitPrice, &p.TaxRate, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetProduct(ctx context.Context, productID int64) (*catalog.Product, error) {
	return r.getProduct(ctx, productQuery, productID)
}

// GetProductForUpdate locks the product row so concurrent completions cannot
// both pass the sufficiency check against a stale stock value.
func (r *repository) GetProductForUpdate(ctx context.Context, productID int64) (*catalog.Product, error) {
	return r.getProduct(ctx, productQuery+` FOR UPDATE`, productID)
}

func (r *repository) DecrementStock(ctx context.Context, productID, quantity int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("pos: decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *repository) InsertMovement(ctx context.Context, movement ledger.Movement) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO stock_movements (product_id, delta, movement_type, reference, note) VALUES ($1, $2, $3, $4, $5)`,
		movement.ProductID, movement.Delta, movement.Type, movement.Reference, movement.Note)
	if err != nil {
		return fmt.Errorf("pos: insert movement: %w", err)
	}
	return nil
}
