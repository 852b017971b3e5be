package roles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, permissions, created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetRole loads one role by id.
func (r *Repository) GetRole(ctx context.Context, id int64) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, description, permissions, created_at, updated_at FROM roles WHERE id=$1`, id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// CreateRole inserts a role with its permission matrix.
func (r *Repository) CreateRole(ctx context.Context, role Role) (int64, error) {
	matrix, err := json.Marshal(role.Permissions)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `INSERT INTO roles (name, description, permissions, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`, role.Name, role.Description, matrix).Scan(&id)
	return id, err
}

// UpdateRole updates description and/or the matrix.
func (r *Repository) UpdateRole(ctx context.Context, id int64, description *string, permissions *PermissionMatrix) error {
	if description != nil {
		if _, err := r.pool.Exec(ctx, `UPDATE roles SET description=$2, updated_at=NOW() WHERE id=$1`, id, *description); err != nil {
			return err
		}
	}
	if permissions != nil {
		matrix, err := json.Marshal(*permissions)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, `UPDATE roles SET permissions=$2, updated_at=NOW() WHERE id=$1`, id, matrix); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	var matrix []byte
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &matrix, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, err
	}
	if len(matrix) > 0 {
		if err := json.Unmarshal(matrix, &role.Permissions); err != nil {
			return Role{}, err
		}
	}
	return role, nil
}
