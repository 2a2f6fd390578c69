package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the aggregate queries behind the sales dashboard. Only
// COMPLETED sales count; open carts are invisible here.
type Repository interface {
	DailySales(ctx context.Context, days int) ([]DailySalesPoint, error)
	TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error)
	PaymentBreakdown(ctx context.Context, days int) ([]PaymentSlice, error)
	LowStock(ctx context.Context, threshold int64, limit int) ([]LowStockEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed dashboard repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DailySales(ctx context.Context, days int) ([]DailySalesPoint, error) {
	const query = `
		SELECT to_char(completed_at::date, 'YYYY-MM-DD') AS day,
			COUNT(*) AS sales,
			COALESCE(SUM(total), 0) AS revenue,
			COALESCE(SUM(tax_total), 0) AS tax_total
		FROM sales
		WHERE status = 'COMPLETED'
			AND completed_at >= NOW() - make_interval(days => $1)
		GROUP BY completed_at::date
		ORDER BY completed_at::date`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("analytics: daily sales: %w", err)
	}
	defer rows.Close()

	var points []DailySalesPoint
	for rows.Next() {
		var p DailySalesPoint
		if err := rows.Scan(&p.Day, &p.Sales, &p.Revenue, &p.TaxTotal); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	const query = `
		SELECT si.product_id, si.product_name,
			SUM(si.quantity) AS quantity,
			COALESCE(SUM(si.line_total), 0) AS revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.status = 'COMPLETED'
			AND s.completed_at >= NOW() - make_interval(days => $1)
		GROUP BY si.product_id, si.product_name
		ORDER BY quantity DESC, revenue DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, days, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: top products: %w", err)
	}
	defer rows.Close()

	var products []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) PaymentBreakdown(ctx context.Context, days int) ([]PaymentSlice, error) {
	const query = `
		SELECT p.method, COUNT(*) AS count, COALESCE(SUM(p.amount), 0) AS amount
		FROM payments p
		JOIN sales s ON s.id = p.sale_id
		WHERE s.status = 'COMPLETED'
			AND s.completed_at >= NOW() - make_interval(days => $1)
		GROUP BY p.method
		ORDER BY amount DESC`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("analytics: payment breakdown: %w", err)
	}
	defer rows.Close()

	var slices []PaymentSlice
	for rows.Next() {
		var p PaymentSlice
		if err := rows.Scan(&p.Method, &p.Count, &p.Amount); err != nil {
			return nil, err
		}
		slices = append(slices, p)
	}
	return slices, rows.Err()
}

func (r *repository) LowStock(ctx context.Context, threshold int64, limit int) ([]LowStockEntry, error) {
	const query = `
		SELECT id, sku, name, stock
		FROM products
		WHERE stock <= $1
		ORDER BY stock ASC, name
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: low stock: %w", err)
	}
	defer rows.Close()

	var entries []LowStockEntry
	for rows.Next() {
		var e LowStockEntry
		if err := rows.Scan(&e.ProductID, &e.SKU, &e.Name, &e.Stock); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
