// Package history keeps an aggregate-only record of completed scans. Transaction
// text never leaves the process; only counts and totals are stored.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Entry is one stored scan summary.
type Entry struct {
	ID               uuid.UUID       `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	Currency         string          `json:"currency"`
	FileCount        int             `json:"file_count"`
	FailedFiles      int             `json:"failed_files"`
	TransactionCount int             `json:"transaction_count"`
	RibaCount        int             `json:"riba_count"`
	RibaTotal        decimal.Decimal `json:"riba_total"`
	CleanTotal       decimal.Decimal `json:"clean_total"`
	DurationMS       int64           `json:"duration_ms"`
}

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository persists scan summaries in Postgres.
type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Save inserts e.
func (r *Repository) Save(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO scan_history (
			id, created_at, currency, file_count, failed_files,
			transaction_count, riba_count, riba_total, clean_total, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		e.ID, e.CreatedAt, e.Currency, e.FileCount, e.FailedFiles,
		e.TransactionCount, e.RibaCount, e.RibaTotal.StringFixed(2), e.CleanTotal.StringFixed(2), e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan history: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, created_at, currency, file_count, failed_files,
			transaction_count, riba_count, riba_total::text, clean_total::text, duration_ms
		FROM scan_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			riba, clean string
		)
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.Currency, &e.FileCount, &e.FailedFiles,
			&e.TransactionCount, &e.RibaCount, &riba, &clean, &e.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if e.RibaTotal, err = decimal.NewFromString(riba); err != nil {
			return nil, fmt.Errorf("invalid riba total %q: %w", riba, err)
		}
		if e.CleanTotal, err = decimal.NewFromString(clean); err != nil {
			return nil, fmt.Errorf("invalid clean total %q: %w", clean, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries created before cutoff and returns the number removed.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM scan_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scan history: %w", err)
	}
	return tag.RowsAffected(), nil
}
