// Package jobs runs scan batches in the background. Jobs and their results live
// in memory; completed jobs are pruned after a retention period.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

// Status represents the current state of a scan job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Finished reports whether the job will not change state again.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed
}

var (
	ErrJobNotFound = errors.New("job not found")
	ErrQueueClosed = errors.New("queue is closed")
	ErrQueueFull   = errors.New("queue is full")
)

// Job is one background scan. Files are only held until a worker picks the job
// up; afterwards only the result or the failure is kept.
type Job struct {
	ID          string              `json:"id"`
	Status      Status              `json:"status"`
	FileNames   []string            `json:"file_names"`
	CreatedAt   time.Time           `json:"created_at"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Error       string              `json:"error,omitempty"`
	Outcomes    []model.FileOutcome `json:"files,omitempty"`
	Result      *model.BatchResult  `json:"result,omitempty"`

	files []model.InputFile
}

// Processor runs the scan pipeline over a batch of files.
type Processor interface {
	ProcessBatch(ctx context.Context, files []model.InputFile) (*model.BatchResult, error)
}

// Filter narrows Store.List.
type Filter struct {
	Status Status
	Limit  int
}
