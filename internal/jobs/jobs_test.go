package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/pkg/observability"
)

type outcomeError struct {
	files []model.FileOutcome
}

func (e *outcomeError) Error() string                 { return "all files invalid" }
func (e *outcomeError) Outcomes() []model.FileOutcome { return e.files }

type stubProcessor struct {
	release chan struct{}
	err     error
	panic   bool
}

func (p *stubProcessor) ProcessBatch(ctx context.Context, files []model.InputFile) (*model.BatchResult, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.panic {
		panic("decoder exploded")
	}
	if p.err != nil {
		return nil, p.err
	}
	return &model.BatchResult{
		ID:           uuid.New(),
		Currency:     model.USD,
		Transactions: make([]model.Transaction, len(files)),
		Files:        []model.FileOutcome{{FileName: files[0].Name, Success: true}},
	}, nil
}

func waitFor(t *testing.T, store *Store, id string, status Status) *Job {
	t.Helper()
	var job *Job
	require.Eventually(t, func() bool {
		var err error
		job, err = store.Get(id)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestQueue_Completes(t *testing.T) {
	store := NewStore()
	reg := prometheus.NewRegistry()
	q := NewQueue(store, &stubProcessor{}, 4, 1, nil).WithMetrics(observability.NewMetrics(reg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, q.Start(ctx))
	defer q.Stop(context.Background())

	job, err := q.Submit(ctx, []model.InputFile{{Name: "a.csv", Data: []byte("x")}})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, []string{"a.csv"}, job.FileNames)

	done := waitFor(t, store, job.ID, StatusCompleted)
	require.NotNil(t, done.Result)
	assert.Len(t, done.Result.Transactions, 1)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.CompletedAt)
	assert.Nil(t, done.files)
}

func TestQueue_Failures(t *testing.T) {
	t.Run("batch error keeps outcomes", func(t *testing.T) {
		store := NewStore()
		procErr := &outcomeError{files: []model.FileOutcome{{FileName: "x.exe", Reason: "unsupported file type"}}}
		q := NewQueue(store, &stubProcessor{err: procErr}, 4, 1, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, q.Start(ctx))

		job, err := q.Submit(ctx, []model.InputFile{{Name: "x.exe"}})
		require.NoError(t, err)

		failed := waitFor(t, store, job.ID, StatusFailed)
		assert.Equal(t, "all files invalid", failed.Error)
		require.Len(t, failed.Outcomes, 1)
		assert.Equal(t, "unsupported file type", failed.Outcomes[0].Reason)
	})

	t.Run("panic recovered", func(t *testing.T) {
		store := NewStore()
		q := NewQueue(store, &stubProcessor{panic: true}, 4, 1, nil)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, q.Start(ctx))

		job, err := q.Submit(ctx, []model.InputFile{{Name: "a.pdf"}})
		require.NoError(t, err)

		failed := waitFor(t, store, job.ID, StatusFailed)
		assert.Contains(t, failed.Error, "decoder exploded")
	})
}

func TestQueue_Full(t *testing.T) {
	store := NewStore()
	q := NewQueue(store, &stubProcessor{}, 1, 1, nil)
	ctx := context.Background()

	// No workers started, so the single buffer slot stays occupied.
	_, err := q.Submit(ctx, []model.InputFile{{Name: "a.csv"}})
	require.NoError(t, err)

	_, err = q.Submit(ctx, []model.InputFile{{Name: "b.csv"}})
	assert.ErrorIs(t, err, ErrQueueFull)

	failed := store.List(Filter{Status: StatusFailed})
	require.Len(t, failed, 1)
	assert.Equal(t, []string{"b.csv"}, failed[0].FileNames)
}

func TestQueue_Stop(t *testing.T) {
	store := NewStore()
	release := make(chan struct{})
	q := NewQueue(store, &stubProcessor{release: release}, 2, 1, nil)
	ctx := context.Background()
	require.NoError(t, q.Start(ctx))

	job, err := q.Submit(ctx, []model.InputFile{{Name: "a.csv"}})
	require.NoError(t, err)
	waitFor(t, store, job.ID, StatusRunning)

	close(release)
	require.NoError(t, q.Stop(ctx))
	require.NoError(t, q.Stop(ctx))

	_, err = q.Submit(ctx, nil)
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Start(ctx), ErrQueueClosed)

	got, err := store.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestStore(t *testing.T) {
	store := NewStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Hour)

	require.NoError(t, store.Save(&Job{ID: "old", Status: StatusCompleted, CreatedAt: old, CompletedAt: &old}))
	require.NoError(t, store.Save(&Job{ID: "recent", Status: StatusFailed, CreatedAt: recent, CompletedAt: &recent}))
	require.NoError(t, store.Save(&Job{ID: "pending", Status: StatusPending, CreatedAt: old}))
	assert.Error(t, store.Save(&Job{}))

	list := store.List(Filter{})
	require.Len(t, list, 3)
	assert.Equal(t, "recent", list[0].ID)
	assert.Len(t, store.List(Filter{Limit: 1}), 1)

	got, err := store.Get("old")
	require.NoError(t, err)
	got.Status = StatusFailed
	again, _ := store.Get("old")
	assert.Equal(t, StatusCompleted, again.Status)

	assert.Equal(t, 1, store.Prune(now.Add(-24*time.Hour)))
	assert.Equal(t, 2, store.Len())

	_, err = store.Get("old")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}
