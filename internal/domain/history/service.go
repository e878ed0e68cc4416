package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/pkg/money"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// Store is the persistence used by Service.
type Store interface {
	Save(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service records batch summaries and serves them back.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Record stores the aggregates of res. Totals are taken for the dominant currency.
func (s *Service) Record(ctx context.Context, res *model.BatchResult) error {
	return s.store.Save(ctx, EntryFrom(res))
}

// EntryFrom builds the stored summary of a batch.
func EntryFrom(res *model.BatchResult) Entry {
	failed := 0
	for _, f := range res.Files {
		if !f.Success {
			failed++
		}
	}
	totals := res.Summary.ByCurrency[res.Currency]
	return Entry{
		ID:               res.ID,
		CreatedAt:        res.ProcessedAt,
		Currency:         string(res.Currency),
		FileCount:        len(res.Files),
		FailedFiles:      failed,
		TransactionCount: res.Summary.TransactionCount,
		RibaCount:        res.Summary.RibaCount,
		RibaTotal:        money.Round(totals.Riba, string(res.Currency)),
		CleanTotal:       money.Round(totals.Clean, string(res.Currency)),
		DurationMS:       res.Duration.Milliseconds(),
	}
}

// Recent returns up to limit entries. Out-of-range limits are clamped.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.List(ctx, limit)
}

// Prune removes entries older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.store.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned scan history", slog.Int64("removed", n))
	}
	return n, nil
}
