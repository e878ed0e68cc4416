// Package service orchestrates a scan: validation, text extraction, currency
// detection, classification and assembly of one batch of files.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/assembler"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/currency"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/guard"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/source"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/validator"
	"github.com/FACorreiaa/ribapurify/pkg/observability"
)

// DefaultBatchTimeout bounds a whole batch when no timeout is configured.
const DefaultBatchTimeout = 60 * time.Second

var (
	ErrAllFilesInvalid = errors.New("all files invalid")
	ErrNoReadableData  = errors.New("no readable data found")
	ErrBatchTimeout    = errors.New("batch processing timed out")
)

// Per-file failure reasons reported in model.FileOutcome.
const (
	ReasonNotStatement  = "not a bank statement"
	ReasonNoText        = "no readable text"
	ReasonFileLimit     = "batch file limit reached"
	reasonDecodePrefix  = "decode failed: "
	outcomeSuccess      = "success"
	outcomeTimeout      = "timeout"
	outcomeAllInvalid   = "all_invalid"
	outcomeNoData       = "no_data"
	outcomeCanceled     = "canceled"
	outcomeInternalFail = "error"
)

// BatchError is a batch-level failure. Files carries the per-file outcomes
// collected before the batch gave up; it is empty for timeouts.
type BatchError struct {
	Err   error
	Files []model.FileOutcome
}

func (e *BatchError) Error() string {
	return e.Err.Error()
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Outcomes returns the per-file outcomes collected before the failure.
func (e *BatchError) Outcomes() []model.FileOutcome {
	return e.Files
}

// HistoryRecorder persists a summary of each successful batch.
type HistoryRecorder interface {
	Record(ctx context.Context, result *model.BatchResult) error
}

// ScanService runs the statement pipeline over a batch of files.
type ScanService struct {
	validator  *validator.Validator
	extractor  *source.Extractor
	vocabulary *guard.Vocabulary
	detector   *currency.Detector
	assembler  *assembler.Assembler

	timeout  time.Duration
	maxFiles int
	history  HistoryRecorder // optional
	metrics  *observability.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

// NewScanService creates a scan service. Nil collaborators are replaced with
// defaults, except the extractor which decides which file kinds are readable.
func NewScanService(
	v *validator.Validator,
	e *source.Extractor,
	vocab *guard.Vocabulary,
	d *currency.Detector,
	a *assembler.Assembler,
	logger *slog.Logger,
) *ScanService {
	if v == nil {
		v = validator.New(validator.MaxFileSize)
	}
	if e == nil {
		e = source.NewExtractor(nil, nil, nil)
	}
	if vocab == nil {
		vocab = guard.Default()
	}
	if d == nil {
		d = currency.NewDetector("")
	}
	if a == nil {
		a = assembler.New(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{
		validator:  v,
		extractor:  e,
		vocabulary: vocab,
		detector:   d,
		assembler:  a,
		timeout:    DefaultBatchTimeout,
		tracer:     observability.Tracer(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithTimeout sets the batch timeout. Zero disables it.
func (s *ScanService) WithTimeout(d time.Duration) *ScanService {
	s.timeout = d
	return s
}

// WithMaxFiles caps the number of files considered per batch. Zero means no cap.
func (s *ScanService) WithMaxFiles(n int) *ScanService {
	s.maxFiles = n
	return s
}

// WithHistory enables scan history recording.
func (s *ScanService) WithHistory(h HistoryRecorder) *ScanService {
	s.history = h
	return s
}

// WithMetrics enables Prometheus metrics.
func (s *ScanService) WithMetrics(m *observability.Metrics) *ScanService {
	s.metrics = m
	return s
}

type batchOutcome struct {
	result *model.BatchResult
	err    error
}

// ProcessBatch runs the pipeline over files sequentially. One file's failure never
// stops the others. If the batch exceeds its timeout, ErrBatchTimeout is returned
// and nothing produced so far is kept.
func (s *ScanService) ProcessBatch(ctx context.Context, files []model.InputFile) (*model.BatchResult, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "statement.ProcessBatch",
		trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	done := make(chan batchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- batchOutcome{err: fmt.Errorf("scan panicked: %v", r)}
			}
		}()
		res, err := s.run(runCtx, files, start)
		done <- batchOutcome{result: res, err: err}
	}()

	var out batchOutcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			out.err = &BatchError{Err: ErrBatchTimeout}
		} else {
			out.err = runCtx.Err()
		}
	}

	elapsed := s.now().Sub(start)
	s.metrics.ObserveBatch(outcomeLabel(out.err), elapsed)

	if out.err != nil {
		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.err.Error())
		s.logger.Warn("scan batch failed",
			slog.Int("files", len(files)),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", out.err))
		return nil, out.err
	}

	out.result.Duration = elapsed
	s.recordMetrics(out.result)
	span.SetAttributes(
		attribute.Int("transactions", len(out.result.Transactions)),
		attribute.String("currency", string(out.result.Currency)),
	)

	if s.history != nil {
		if err := s.history.Record(ctx, out.result); err != nil {
			s.logger.Warn("failed to record scan history", "error", err)
		}
	}

	s.logger.Info("scan batch completed",
		slog.String("batch_id", out.result.ID.String()),
		slog.Int("files", len(files)),
		slog.Int("transactions", len(out.result.Transactions)),
		slog.Int("riba", out.result.Summary.RibaCount),
		slog.String("currency", string(out.result.Currency)),
		slog.Duration("elapsed", elapsed))

	return out.result, nil
}

func (s *ScanService) run(ctx context.Context, files []model.InputFile, start time.Time) (*model.BatchResult, error) {
	outcomes := make([]model.FileOutcome, 0, len(files))
	var (
		lines []model.RawLine
		valid int
	)

	for i, f := range files {
		if s.maxFiles > 0 && i >= s.maxFiles {
			outcomes = append(outcomes, model.FileOutcome{FileName: f.Name, Reason: ReasonFileLimit})
			continue
		}

		kind, err := s.validator.Validate(f)
		if err != nil {
			reason := validator.Reason(err)
			outcomes = append(outcomes, model.FileOutcome{FileName: f.Name, Reason: reason})
			if s.metrics != nil {
				s.metrics.FilesRejected.WithLabelValues(reason).Inc()
			}
			s.logger.Info("file rejected", slog.String("file", f.Name), slog.String("reason", reason))
			continue
		}
		valid++
		if s.metrics != nil {
			s.metrics.FilesAccepted.Inc()
		}

		fileLines, reason := s.extractFile(ctx, f, kind)
		outcome := model.FileOutcome{FileName: f.Name, Kind: kind, Reason: reason, Lines: len(fileLines)}
		if reason == "" {
			outcome.Success = true
			lines = append(lines, fileLines...)
		} else if s.metrics != nil {
			s.metrics.FilesFailed.WithLabelValues(string(kind)).Inc()
		}
		outcomes = append(outcomes, outcome)
	}

	if valid == 0 {
		return nil, &BatchError{Err: ErrAllFilesInvalid, Files: outcomes}
	}
	if len(lines) == 0 {
		return nil, &BatchError{Err: ErrNoReadableData, Files: outcomes}
	}

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	dominant := s.detector.Dominant(texts)
	txs := s.assembler.Assemble(lines, dominant)

	return &model.BatchResult{
		ID:           uuid.New(),
		Currency:     dominant,
		Transactions: txs,
		Files:        outcomes,
		Summary:      model.Summarize(txs),
		ProcessedAt:  start.UTC(),
	}, nil
}

// extractFile returns the file's lines, or a non-empty failure reason.
func (s *ScanService) extractFile(ctx context.Context, f model.InputFile, kind model.FileKind) ([]model.RawLine, string) {
	lines, err := s.extractor.Extract(ctx, f, kind)
	if err != nil {
		s.logger.Warn("file extraction failed",
			slog.String("file", f.Name),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
		if errors.Is(err, source.ErrNoText) {
			return nil, ReasonNoText
		}
		return nil, reasonDecodePrefix + err.Error()
	}
	if len(lines) == 0 {
		return nil, ReasonNoText
	}

	if !kind.Tabular() {
		texts := make([]string, len(lines))
		for i, l := range lines {
			texts[i] = l.Text
		}
		if !s.vocabulary.Recognizes(strings.Join(texts, "\n"), kind == model.KindImage) {
			s.logger.Info("file rejected by content check", slog.String("file", f.Name))
			return nil, ReasonNotStatement
		}
	}

	if s.metrics != nil {
		s.metrics.LinesExtracted.Add(float64(len(lines)))
	}
	return lines, ""
}

func (s *ScanService) recordMetrics(res *model.BatchResult) {
	if s.metrics == nil {
		return
	}
	for _, tx := range res.Transactions {
		s.metrics.TransactionsEmitted.WithLabelValues(string(tx.Category)).Inc()
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrBatchTimeout):
		return outcomeTimeout
	case errors.Is(err, ErrAllFilesInvalid):
		return outcomeAllInvalid
	case errors.Is(err, ErrNoReadableData):
		return outcomeNoData
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	default:
		return outcomeInternalFail
	}
}
