package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/inventory"
)

type Repository interface {
	MonthlyInvoiceTotals(ctx context.Context, from, to time.Time) (sales, purchases float64, err error)
	PartnerBalances(ctx context.Context) (receivables, payables float64, err error)
	LowStockCount(ctx context.Context) (int64, error)
	RecentMovements(ctx context.Context, limit int) ([]inventory.Movement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) MonthlyInvoiceTotals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	var sales, purchases float64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'SALES'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'PURCHASE'), 0)
		FROM invoices
		WHERE invoice_date >= $1 AND invoice_date < $2
	`, from, to).Scan(&sales, &purchases)
	if err != nil {
		return 0, 0, fmt.Errorf("monthly invoice totals: %w", err)
	}
	return sales, purchases, nil
}

func (r *repository) PartnerBalances(ctx context.Context) (float64, float64, error) {
	var receivables, payables float64
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(balance) FILTER (WHERE balance > 0), 0),
			COALESCE(-SUM(balance) FILTER (WHERE balance < 0), 0)
		FROM partners
		WHERE is_active
	`).Scan(&receivables, &payables)
	if err != nil {
		return 0, 0, fmt.Errorf("partner balances: %w", err)
	}
	return receivables, payables, nil
}

func (r *repository) LowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active AND stock <= min_stock`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("low stock count: %w", err)
	}
	return count, nil
}

func (r *repository) RecentMovements(ctx context.Context, limit int) ([]inventory.Movement, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, ref, product_id, type, quantity, old_stock, new_stock, description, created_by, created_at
		FROM stock_movements
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent movements: %w", err)
	}
	defer rows.Close()

	var out []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		if err := rows.Scan(&m.ID, &m.Ref, &m.ProductID, &m.Type, &m.Quantity, &m.OldStock,
			&m.NewStock, &m.Description, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
