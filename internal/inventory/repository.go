package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/platform/db"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	LockProductStock(ctx context.Context, productID int64) (name string, stock int, err error)
	UpdateProductStock(ctx context.Context, productID int64, stock int) error
	InsertMovement(ctx context.Context, m *Movement) error

	ListMovements(ctx context.Context, f MovementFilters) ([]Movement, int64, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, q: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{pool: r.pool, q: tx})
	})
}

func (r *repository) LockProductStock(ctx context.Context, productID int64) (string, int, error) {
	var name string
	var stock int
	err := r.q.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&name, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, httpx.ErrNotFound
	}
	if err != nil {
		return "", 0, fmt.Errorf("lock product stock: %w", err)
	}
	return name, stock, nil
}

func (r *repository) UpdateProductStock(ctx context.Context, productID int64, stock int) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertMovement(ctx context.Context, m *Movement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_movements (ref, product_id, type, quantity, old_stock, new_stock, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, m.Ref, m.ProductID, m.Type, m.Quantity, m.OldStock, m.NewStock, m.Description, m.CreatedBy).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *repository) ListMovements(ctx context.Context, f MovementFilters) ([]Movement, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ProductID > 0 {
		where = append(where, "product_id = "+arg(f.ProductID))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(string(f.Type)))
	}
	if f.From != nil {
		where = append(where, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= "+arg(*f.To))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, ref, product_id, type, quantity, old_stock, new_stock, description, created_by, created_at
		FROM stock_movements
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT %s OFFSET %s
	`, cond, arg(limit), arg(f.Offset))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.Ref, &m.ProductID, &m.Type, &m.Quantity, &m.OldStock,
			&m.NewStock, &m.Description, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}
