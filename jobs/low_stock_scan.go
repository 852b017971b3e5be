package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medika-erp/medika-erp/internal/shared"
)

// LowStockScanJob walks active products and records an audit row for each
// one at or under its minimum stock, giving purchasing a daily trail.
type LowStockScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	Audit  *shared.AuditLogger
}

func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger, audit *shared.AuditLogger) *LowStockScanJob {
	return &LowStockScanJob{Pool: pool, Logger: logger, Audit: audit}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("low stock scan: handler not configured")
	}

	rows, err := j.Pool.Query(ctx, `
		SELECT id, code, name, stock, min_stock
		FROM products
		WHERE is_active AND stock <= min_stock
		ORDER BY stock - min_stock ASC
	`)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}
	defer rows.Close()

	var flagged int
	for rows.Next() {
		var (
			id              int64
			code, name      string
			stock, minStock int
		)
		if err := rows.Scan(&id, &code, &name, &stock, &minStock); err != nil {
			return fmt.Errorf("low stock scan: %w", err)
		}
		flagged++

		j.Logger.Warn("low stock",
			slog.Int64("product_id", id),
			slog.String("code", code),
			slog.Int("stock", stock),
			slog.Int("min_stock", minStock),
		)
		if j.Audit != nil {
			err := j.Audit.Record(ctx, shared.AuditLog{
				Action:   "stock.low",
				Entity:   "product",
				EntityID: strconv.FormatInt(id, 10),
				Meta:     map[string]any{"code": code, "name": name, "stock": stock, "min_stock": minStock},
			})
			if err != nil {
				j.Logger.Warn("audit low stock", slog.Any("error", err))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}

	j.Logger.Info("low stock scan finished", slog.Int("flagged", flagged))
	return nil
}
