package partners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/platform/httpx"
	"github.com/medika-erp/medika-erp/internal/shared"
)

// ListFilters narrows partner listings.
type ListFilters struct {
	Search   string
	Type     PartnerType
	IsActive *bool
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, id int64) (*Partner, error)
	List(ctx context.Context, f ListFilters) ([]Partner, int64, error)
	Update(ctx context.Context, p *Partner) error
	Deactivate(ctx context.Context, id int64) error
	ListLedger(ctx context.Context, partnerID int64, p shared.Pagination) ([]LedgerEntry, int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partnerColumns = `id, name, type, balance, tax_number, email, phone, address, is_active, created_at, updated_at`

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Balance, &p.TaxNumber, &p.Email, &p.Phone, &p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Partner) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO partners (name, type, tax_number, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, balance, is_active, created_at, updated_at
	`, p.Name, p.Type, p.TaxNumber, p.Email, p.Phone, p.Address).
		Scan(&p.ID, &p.Balance, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Partner, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR tax_number ILIKE %s)", p, p))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(string(f.Type)))
	}
	if f.IsActive != nil {
		where = append(where, "is_active = "+arg(*f.IsActive))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count partners: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM partners WHERE %s ORDER BY name ASC LIMIT %s OFFSET %s`,
		partnerColumns, cond, arg(limit), arg(f.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var out []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Balance, &p.TaxNumber, &p.Email, &p.Phone, &p.Address, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan partner: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, p *Partner) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners
		SET name = $2, type = $3, tax_number = $4, email = $5, phone = $6, address = $7, is_active = $8, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Name, p.Type, p.TaxNumber, p.Email, p.Phone, p.Address, p.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return fmt.Errorf("update partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partners SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListLedger(ctx context.Context, partnerID int64, p shared.Pagination) ([]LedgerEntry, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE partner_id = $1`, partnerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, partner_id, entry_date, description, type, amount, invoice_id, created_at
		FROM ledger_entries
		WHERE partner_id = $1
		ORDER BY entry_date ASC, id ASC
		LIMIT $2 OFFSET $3
	`, partnerID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.PartnerID, &e.EntryDate, &e.Description, &e.Type, &e.Amount, &e.InvoiceID, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
