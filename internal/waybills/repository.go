package waybills

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
	Insert(ctx context.Context, wb *Waybill) error
	Update(ctx context.Context, wb *Waybill) error
	DeleteItems(ctx context.Context, waybillID int64) error
	InsertItems(ctx context.Context, waybillID int64, items []WaybillItem) error

	GetByID(ctx context.Context, id int64) (*Waybill, error)
	GetByNumber(ctx context.Context, number string) (*Waybill, error)
	List(ctx context.Context, f ListFilters) ([]Waybill, int64, error)
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
	return numbering.Next(ctx, r.q, numbering.PrefixWaybill, at)
}

func (r *repository) Insert(ctx context.Context, wb *Waybill) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO waybills (number, type, status, partner_id, waybill_date, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, wb.Number, wb.Type, wb.Status, wb.PartnerID, wb.WaybillDate, wb.Notes, wb.CreatedBy).
		Scan(&wb.ID, &wb.CreatedAt, &wb.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return fmt.Errorf("insert waybill: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, wb *Waybill) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE waybills
		SET type = $2, status = $3, partner_id = $4, waybill_date = $5, notes = $6, updated_at = now()
		WHERE id = $1
	`, wb.ID, wb.Type, wb.Status, wb.PartnerID, wb.WaybillDate, wb.Notes)
	if err != nil {
		return fmt.Errorf("update waybill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, waybillID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM waybill_items WHERE waybill_id = $1`, waybillID); err != nil {
		return fmt.Errorf("delete waybill items: %w", err)
	}
	return nil
}

func (r *repository) InsertItems(ctx context.Context, waybillID int64, items []WaybillItem) error {
	for i := range items {
		item := &items[i]
		item.WaybillID = waybillID
		err := r.q.QueryRow(ctx, `
			INSERT INTO waybill_items (waybill_id, product_id, quantity, unit, description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.WaybillID, item.ProductID, item.Quantity, item.Unit, item.Description).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert waybill item: %w", err)
		}
	}
	return nil
}

const waybillColumns = `w.id, w.number, w.type, w.status, w.partner_id, p.name, w.waybill_date, w.notes, w.created_by, w.created_at, w.updated_at`

func scanWaybill(row pgx.Row) (*Waybill, error) {
	var wb Waybill
	err := row.Scan(&wb.ID, &wb.Number, &wb.Type, &wb.Status, &wb.PartnerID, &wb.PartnerName,
		&wb.WaybillDate, &wb.Notes, &wb.CreatedBy, &wb.CreatedAt, &wb.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &wb, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Waybill, error) {
	wb, err := scanWaybill(r.q.QueryRow(ctx, `
		SELECT `+waybillColumns+`
		FROM waybills w JOIN partners p ON p.id = w.partner_id
		WHERE w.id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get waybill: %w", err)
	}
	if err := r.loadItems(ctx, wb); err != nil {
		return nil, err
	}
	return wb, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Waybill, error) {
	wb, err := scanWaybill(r.q.QueryRow(ctx, `
		SELECT `+waybillColumns+`
		FROM waybills w JOIN partners p ON p.id = w.partner_id
		WHERE w.number = $1
	`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get waybill by number: %w", err)
	}
	if err := r.loadItems(ctx, wb); err != nil {
		return nil, err
	}
	return wb, nil
}

func (r *repository) loadItems(ctx context.Context, wb *Waybill) error {
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.waybill_id, it.product_id, pr.name, it.quantity, it.unit, it.description
		FROM waybill_items it JOIN products pr ON pr.id = it.product_id
		WHERE it.waybill_id = $1
		ORDER BY it.id ASC
	`, wb.ID)
	if err != nil {
		return fmt.Errorf("load waybill items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item WaybillItem
		if err := rows.Scan(&item.ID, &item.WaybillID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Unit, &item.Description); err != nil {
			return fmt.Errorf("scan waybill item: %w", err)
		}
		wb.Items = append(wb.Items, item)
	}
	return rows.Err()
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Waybill, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "w.type = "+arg(string(f.Type)))
	}
	if f.Status != "" {
		where = append(where, "w.status = "+arg(string(f.Status)))
	}
	if f.PartnerID > 0 {
		where = append(where, "w.partner_id = "+arg(f.PartnerID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(w.number ILIKE %s OR p.name ILIKE %s)", p, p))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM waybills w JOIN partners p ON p.id = w.partner_id WHERE ` + cond
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count waybills: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM waybills w JOIN partners p ON p.id = w.partner_id
		WHERE %s
		ORDER BY w.waybill_date DESC, w.id DESC
		LIMIT %s OFFSET %s
	`, waybillColumns, cond, arg(limit), arg(f.Offset))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list waybills: %w", err)
	}
	defer rows.Close()

	var out []Waybill
	for rows.Next() {
		var wb Waybill
		if err := rows.Scan(&wb.ID, &wb.Number, &wb.Type, &wb.Status, &wb.PartnerID, &wb.PartnerName,
			&wb.WaybillDate, &wb.Notes, &wb.CreatedBy, &wb.CreatedAt, &wb.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan waybill: %w", err)
		}
		out = append(out, wb)
	}
	return out, total, rows.Err()
}
