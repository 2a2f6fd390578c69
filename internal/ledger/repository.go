package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the stock ledger. Writes happen exclusively inside the
// sale transaction engine (sale movements) and inventory adjustment flows,
// within their own transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MovementFilter narrows List results.
type MovementFilter struct {
	ProductID int64
	Type      MovementType
	Limit     int
}

// List returns ledger rows, newest first.
func (r *Repository) List(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := `
		SELECT id, product_id, delta, movement_type, reference, note, created_at
		FROM stock_movements`
	var conditions []string
	var args []interface{}
	argPos := 1

	if filter.ProductID != 0 {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argPos))
		args = append(args, filter.ProductID)
		argPos++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("movement_type = $%d", argPos))
		args = append(args, string(filter.Type))
		argPos++
	}
	if len(conditions) > 0 {
		query += " WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			query += " AND " + conditions[i]
		}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argPos)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: list movements: %w", err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Type, &m.Reference, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// SumDeltas recomputes a product's stock from the ledger, the source of truth
// behind products.stock.
func (r *Repository) SumDeltas(ctx context.Context, productID int64) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0) FROM stock_movements WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("ledger: sum deltas: %w", err)
	}
	return sum, nil
}
