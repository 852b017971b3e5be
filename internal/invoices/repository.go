package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/inventory"
	"github.com/medika-erp/medika-erp/internal/numbering"
	"github.com/medika-erp/medika-erp/internal/partners"
	"github.com/medika-erp/medika-erp/internal/platform/db"
	"github.com/medika-erp/medika-erp/internal/platform/httpx"
)

// Repository persists invoices and the side effects of a posting. The
// mutating methods are meant to run inside WithTx so a posting commits as
// one unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	NextNumber(ctx context.Context, at time.Time) (string, error)
	Insert(ctx context.Context, inv *Invoice) error
	InsertLedgerEntry(ctx context.Context, e *partners.LedgerEntry) error
	AdjustPartnerBalance(ctx context.Context, partnerID int64, delta float64) error
	LockProductStock(ctx context.Context, productID int64) (name string, stock int, err error)
	UpdateProductStock(ctx context.Context, productID int64, stock int) error
	InsertMovement(ctx context.Context, m *inventory.Movement) error

	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, f ListFilters) ([]Invoice, int64, error)
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
	return numbering.Next(ctx, r.q, numbering.PrefixInvoice, at)
}

func (r *repository) Insert(ctx context.Context, inv *Invoice) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO invoices (number, type, partner_id, invoice_date, due_date, notes, sub_total, tax_total, total_amount, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, inv.Number, inv.Type, inv.PartnerID, inv.InvoiceDate, inv.DueDate, inv.Notes,
		inv.SubTotal, inv.TaxTotal, inv.TotalAmount, inv.CreatedBy).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		err := r.q.QueryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, tax_rate, line_total, line_tax)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, item.InvoiceID, item.ProductID, item.Quantity, item.UnitPrice, item.TaxRate, item.LineTotal, item.LineTax).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func (r *repository) InsertLedgerEntry(ctx context.Context, e *partners.LedgerEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO ledger_entries (partner_id, entry_date, description, type, amount, invoice_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, e.PartnerID, e.EntryDate, e.Description, e.Type, e.Amount, e.InvoiceID).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *repository) AdjustPartnerBalance(ctx context.Context, partnerID int64, delta float64) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE partners SET balance = balance + $2, updated_at = now() WHERE id = $1
	`, partnerID, delta)
	if err != nil {
		return fmt.Errorf("adjust partner balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
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

func (r *repository) InsertMovement(ctx context.Context, m *inventory.Movement) error {
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

const invoiceColumns = `i.id, i.number, i.type, i.partner_id, p.name, i.invoice_date, i.due_date, i.notes, i.sub_total, i.tax_total, i.total_amount, i.created_by, i.created_at`

func (r *repository) scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Type, &inv.PartnerID, &inv.PartnerName,
		&inv.InvoiceDate, &inv.DueDate, &inv.Notes, &inv.SubTotal, &inv.TaxTotal,
		&inv.TotalAmount, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := r.scanInvoice(r.q.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i JOIN partners p ON p.id = i.partner_id
		WHERE i.id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := r.scanInvoice(r.q.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i JOIN partners p ON p.id = i.partner_id
		WHERE i.number = $1
	`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice by number: %w", err)
	}
	if err := r.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repository) loadItems(ctx context.Context, inv *Invoice) error {
	rows, err := r.q.Query(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, pr.name, it.quantity, it.unit_price, it.tax_rate, it.line_total, it.line_tax
		FROM invoice_items it JOIN products pr ON pr.id = it.product_id
		WHERE it.invoice_id = $1
		ORDER BY it.id ASC
	`, inv.ID)
	if err != nil {
		return fmt.Errorf("load invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.TaxRate, &item.LineTotal, &item.LineTax); err != nil {
			return fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	return rows.Err()
}

func (r *repository) List(ctx context.Context, f ListFilters) ([]Invoice, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "i.type = "+arg(string(f.Type)))
	}
	if f.PartnerID > 0 {
		where = append(where, "i.partner_id = "+arg(f.PartnerID))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf("(i.number ILIKE %s OR p.name ILIKE %s)", p, p))
	}
	if f.From != nil {
		where = append(where, "i.invoice_date >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "i.invoice_date <= "+arg(*f.To))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM invoices i JOIN partners p ON p.id = i.partner_id WHERE ` + cond
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices i JOIN partners p ON p.id = i.partner_id
		WHERE %s
		ORDER BY i.invoice_date DESC, i.id DESC
		LIMIT %s OFFSET %s
	`, invoiceColumns, cond, arg(limit), arg(f.Offset))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.Type, &inv.PartnerID, &inv.PartnerName,
			&inv.InvoiceDate, &inv.DueDate, &inv.Notes, &inv.SubTotal, &inv.TaxTotal,
			&inv.TotalAmount, &inv.CreatedBy, &inv.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}
