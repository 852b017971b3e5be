// Package numbering allocates sequential document numbers of the form
// PREFIX-YYYY-NNNN, one counter per prefix per year.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	PrefixInvoice  = "FAT"
	PrefixWaybill  = "IRS"
	PrefixProposal = "TEK"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx. Callers allocating a
// number as part of a document write must pass the transaction so the
// counter advance and the document insert commit together.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Next advances the counter for the prefix in the given year and returns the
// formatted number. The upsert is atomic, so concurrent allocations never
// observe the same sequence value.
func Next(ctx context.Context, q Querier, prefix string, at time.Time) (string, error) {
	year := at.Year()
	var seq int64
	err := q.QueryRow(ctx, `
		INSERT INTO document_sequences (prefix, year, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, prefix, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next document number %s-%d: %w", prefix, year, err)
	}
	return Format(prefix, year, seq), nil
}

// Format renders a document number without touching the counter.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
