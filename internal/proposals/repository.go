package proposals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/numbering"
	"github.com/medika-erp/medika-erp/internal/platform/db"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	NextNumber(ctx context.Context, at time.Time) (string, error)
	Insert(ctx context.Context, p *Proposal) error
	UpdateStatus(ctx context.Context, id int64, status ProposalStatus, invoiceID *int64) error

	GetByID(ctx context.Context, id int64) (*Proposal, error)
	List(ctx context.Context, f ListFilters) ([]Proposal, int64, error)
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

func (r *repository) NextNumber(ctx context.Context, at time.Time) (string, error) {
	return numbering.Next(ctx, r.q, numbering.PrefixProposal, at)
}

func (r *repository) Insert(ctx context.Context, p *Proposal) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO proposals (number, type, status, partner_id, proposal_date, valid_until, notes, sub_total, tax_total, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, p.Number, p.Type, p.Status, p.PartnerID, p.ProposalDate, p.ValidUntil, p.Notes,
		p.SubTotal, p.TaxTotal, p.TotalAmount, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return fmt.Errorf("insert proposal: %w", err)
	}

	for i := range p.Items {
		item := &p.Items[i]
		item.ProposalID = p.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO proposal_items (proposal_id, product_id, quantity, unit_price, tax_rate, line_total, line_tax)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, item.ProposalID, item.ProductID, item.Quantity, item.UnitPrice, item.TaxRate, item.LineTotal, item.LineTax).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert proposal item: %w", err)
		}
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status ProposalStatus, invoiceID *int64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE proposals SET status = $2, invoice_id = COALESCE($3, invoice_id), updated_at = now() WHERE id = $1
	`, id, status, invoiceID)
	if err != nil {
		return fmt.Errorf("update proposal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const proposalColumns = `pr.id, pr.number, pr.type, pr.status, pr.partner_id, p.name, pr.proposal_date, pr.valid_until, pr.notes, pr.sub_total, pr.tax_total, pr.total_amount, pr.invoice_id, pr.created_by, pr.created_at, pr.updated_at`

func (r *repository) GetByID(ctx context.Context, id int64) (*Proposal, error) {
	var p Proposal
	err := r.q.QueryRow(ctx, `
		SELECT `+proposalColumns+`
		FROM proposals pr JOIN partners p ON p.id = pr.partner_id
		WHERE pr.id = $1
	`, id).Scan(&p.ID, &p.Number, &p.Type, &p.Status, &p.PartnerID, &p.PartnerName,
		&p.ProposalDate, &p.ValidUntil, &p.Notes, &p.SubTotal, &p.TaxTotal, &p.TotalAmount,
		&p.InvoiceID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.proposal_id, it.product_id, prod.name, it.quantity, it.unit_price, it.tax_rate, it.line_total, it.line_tax
		FROM proposal_items it JOIN products prod ON prod.id = it.product_id
		WHERE it.proposal_id = $1
		ORDER BY it.id ASC
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load proposal items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item ProposalItem
		if err := rows.Scan(&item.ID, &item.ProposalID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TaxRate, &item.LineTotal, &item.LineTax); err != nil {
			return nil, fmt.Errorf("scan proposal item: %w", err)
		}
		p.Items = append(p.Items, item)
	}
	return &p, rows.Err()
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Proposal, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "pr.type = "+arg(string(f.Type)))
	}
	if f.Status != "" {
		where = append(where, "pr.status = "+arg(string(f.Status)))
	}
	if f.PartnerID > 0 {
		where = append(where, "pr.partner_id = "+arg(f.PartnerID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(pr.number ILIKE %s OR p.name ILIKE %s)", p, p))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM proposals pr JOIN partners p ON p.id = pr.partner_id WHERE ` + cond
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count proposals: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM proposals pr JOIN partners p ON p.id = pr.partner_id
		WHERE %s
		ORDER BY pr.proposal_date DESC, pr.id DESC
		LIMIT %s OFFSET %s
	`, proposalColumns, cond, arg(limit), arg(f.Offset))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		var p Proposal
		if err := rows.Scan(&p.ID, &p.Number, &p.Type, &p.Status, &p.PartnerID, &p.PartnerName,
			&p.ProposalDate, &p.ValidUntil, &p.Notes, &p.SubTotal, &p.TaxTotal, &p.TotalAmount,
			&p.InvoiceID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan proposal: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
