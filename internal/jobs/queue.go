package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/pkg/observability"
)

const (
	DefaultBufferSize = 64
	DefaultWorkers    = 2
)

// batchFailure is satisfied by errors that carry per-file outcomes.
type batchFailure interface {
	error
	Outcomes() []model.FileOutcome
}

// Queue distributes scan jobs to a fixed pool of workers over a buffered channel.
type Queue struct {
	jobChan   chan *Job
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool

	store     *Store
	processor Processor
	workers   int
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewQueue creates a queue. Submit fails with ErrQueueFull once bufferSize jobs
// are waiting.
func NewQueue(store *Store, processor Processor, bufferSize, workers int, logger *slog.Logger) *Queue {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobChan:   make(chan *Job, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		processor: processor,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

// WithMetrics reports queue depth on m.
func (q *Queue) WithMetrics(m *observability.Metrics) *Queue {
	q.metrics = m
	return q
}

// Submit stores a pending job for files and enqueues it.
func (q *Queue) Submit(ctx context.Context, files []model.InputFile) (*Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, ErrQueueClosed
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	job := &Job{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		FileNames: names,
		CreatedAt: q.now().UTC(),
		files:     files,
	}
	if err := q.store.Save(job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case q.jobChan <- job:
		q.gauge(1)
		return q.store.Get(job.ID)
	case <-ctx.Done():
		q.fail(job, ctx.Err())
		return nil, ctx.Err()
	default:
		q.fail(job, ErrQueueFull)
		return nil, ErrQueueFull
	}
}

// Start launches the workers. They stop when ctx is canceled or Stop is called.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.logger.Info("scan job workers started", slog.Int("workers", q.workers))
	return nil
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			q.gauge(-1)
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job *Job) {
	started := q.now().UTC()
	job.Status = StatusRunning
	job.StartedAt = &started
	_ = q.store.Save(job)

	files := job.files
	job.files = nil

	res, err := q.run(ctx, files)
	if err != nil {
		q.fail(job, err)
		q.logger.Warn("scan job failed", slog.String("job_id", job.ID), slog.Any("error", err))
		return
	}

	completed := q.now().UTC()
	job.Status = StatusCompleted
	job.CompletedAt = &completed
	job.Result = res
	job.Outcomes = res.Files
	_ = q.store.Save(job)

	q.logger.Info("scan job completed",
		slog.String("job_id", job.ID),
		slog.Int("transactions", len(res.Transactions)))
}

func (q *Queue) run(ctx context.Context, files []model.InputFile) (res *model.BatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan job panicked: %v", r)
		}
	}()
	return q.processor.ProcessBatch(ctx, files)
}

func (q *Queue) fail(job *Job, err error) {
	completed := q.now().UTC()
	job.Status = StatusFailed
	job.CompletedAt = &completed
	job.Error = err.Error()
	job.files = nil

	var bf batchFailure
	if errors.As(err, &bf) {
		job.Outcomes = bf.Outcomes()
	}
	_ = q.store.Save(job)
}

func (q *Queue) gauge(delta float64) {
	if q.metrics != nil {
		q.metrics.JobsQueued.Add(delta)
	}
}

// Stop closes the queue and waits for in-flight jobs to finish or ctx to expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
