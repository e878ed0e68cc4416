// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs retention sweeps every ten minutes.
const DefaultSchedule = "*/10 * * * *"

// JobPruner drops finished scan jobs completed before cutoff.
type JobPruner interface {
	Prune(cutoff time.Time) int
}

// HistoryPruner drops stored scan summaries older than retention.
type HistoryPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler manages background retention jobs using robfig/cron.
type Scheduler struct {
	cron             *cron.Cron
	schedule         string
	jobs             JobPruner
	jobRetention     time.Duration
	history          HistoryPruner // optional
	historyRetention time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewScheduler creates a new retention scheduler. An empty schedule selects DefaultSchedule.
func NewScheduler(schedule string, jobs JobPruner, jobRetention time.Duration, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:         c,
		schedule:     schedule,
		jobs:         jobs,
		jobRetention: jobRetention,
		logger:       logger,
		now:          time.Now,
	}
}

// WithHistory also prunes scan history on every sweep.
func (s *Scheduler) WithHistory(h HistoryPruner, retention time.Duration) *Scheduler {
	s.history = h
	s.historyRetention = retention
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a sweep synchronously.
func (s *Scheduler) RunNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	removed := 0
	if s.jobs != nil {
		removed = s.jobs.Prune(s.now().Add(-s.jobRetention))
	}

	var historyRemoved int64
	if s.history != nil && s.historyRetention > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := s.history.Prune(ctx, s.historyRetention)
		if err != nil {
			s.logger.Error("failed to prune scan history", slog.Any("error", err))
		}
		historyRemoved = n
	}

	s.logger.Debug("retention sweep completed",
		slog.Int("jobs_removed", removed),
		slog.Int64("history_removed", historyRemoved),
	)
}
