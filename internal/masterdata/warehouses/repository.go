package warehouses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Warehouse, error)
	Get(ctx context.Context, id int64) (Warehouse, error)
	Create(ctx context.Context, name, address string) (Warehouse, error)
	Update(ctx context.Context, id int64, name, address string) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, is_active, created_at, updated_at FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Warehouse
	for rows.Next() {
		var wh Warehouse
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.Address, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, wh)
	}
	return items, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Warehouse, error) {
	var wh Warehouse
	err := r.db.QueryRow(ctx, `SELECT id, name, address, is_active, created_at, updated_at FROM warehouses WHERE id=$1`, id).
		Scan(&wh.ID, &wh.Name, &wh.Address, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, httpx.ErrNotFound
		}
		return Warehouse{}, err
	}
	return wh, nil
}

func (r *repository) Create(ctx context.Context, name, address string) (Warehouse, error) {
	var wh Warehouse
	err := r.db.QueryRow(ctx, `INSERT INTO warehouses (name, address, is_active, created_at, updated_at) VALUES ($1, $2, TRUE, NOW(), NOW())
RETURNING id, name, address, is_active, created_at, updated_at`, name, address).
		Scan(&wh.ID, &wh.Name, &wh.Address, &wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Warehouse{}, httpx.ErrDuplicate
		}
		return Warehouse{}, err
	}
	return wh, nil
}

func (r *repository) Update(ctx context.Context, id int64, name, address string) error {
	tag, err := r.db.Exec(ctx, `UPDATE warehouses SET name=$2, address=$3, updated_at=NOW() WHERE id=$1`, id, name, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE warehouses SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
