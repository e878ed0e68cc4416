// Package handler exposes the scanning pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/ribapurify/internal/domain/history"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/export"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/service"
	"github.com/FACorreiaa/ribapurify/internal/jobs"
)

const (
	// FilesField is the multipart field carrying statement files.
	FilesField = "files"

	DefaultMaxUploadBytes int64 = 256 << 20
	multipartMemory       int64 = 32 << 20
)

var errNoFiles = errors.New("no files uploaded")

// Scanner runs one batch through the pipeline.
type Scanner interface {
	ProcessBatch(ctx context.Context, files []model.InputFile) (*model.BatchResult, error)
}

// JobQueue accepts background scans.
type JobQueue interface {
	Submit(ctx context.Context, files []model.InputFile) (*jobs.Job, error)
}

// JobStore looks up background scans.
type JobStore interface {
	Get(id string) (*jobs.Job, error)
}

// HistoryReader serves stored scan summaries.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// ScanHandler serves scan, job and history endpoints.
type ScanHandler struct {
	scanner   Scanner
	queue     JobQueue
	jobs      JobStore
	history   HistoryReader
	maxUpload int64
	logger    *slog.Logger
}

// NewScanHandler creates a handler for synchronous scans. Job and history
// endpoints answer 501 until enabled with WithJobs and WithHistory.
func NewScanHandler(scanner Scanner, logger *slog.Logger) *ScanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanHandler{
		scanner:   scanner,
		maxUpload: DefaultMaxUploadBytes,
		logger:    logger,
	}
}

func (h *ScanHandler) WithJobs(queue JobQueue, store JobStore) *ScanHandler {
	h.queue = queue
	h.jobs = store
	return h
}

func (h *ScanHandler) WithHistory(r HistoryReader) *ScanHandler {
	h.history = r
	return h
}

// WithMaxUpload caps the request body size.
func (h *ScanHandler) WithMaxUpload(n int64) *ScanHandler {
	if n > 0 {
		h.maxUpload = n
	}
	return h
}

// Routes mounts the API under r.
func (h *ScanHandler) Routes(r chi.Router) {
	r.Post("/scans", h.Scan)
	r.Post("/jobs", h.SubmitJob)
	r.Get("/jobs/{id}", h.GetJob)
	r.Get("/jobs/{id}/export", h.ExportJob)
	r.Get("/history", h.History)
}

// Scan handles POST /api/v1/scans. The optional format query parameter selects
// json (default), csv or xlsx output.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	files, err := h.readFiles(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.scanner.ProcessBatch(r.Context(), files)
	if err != nil {
		h.writeBatchError(w, err)
		return
	}

	h.writeResult(w, res, format)
}

// SubmitJob handles POST /api/v1/jobs.
func (h *ScanHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_enabled", "background jobs are disabled")
		return
	}

	files, err := h.readFiles(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	// Jobs outlive the request.
	job, err := h.queue.Submit(context.WithoutCancel(r.Context()), files)
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrQueueClosed) {
			writeJSONError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
		h.logger.Error("failed to submit scan job", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to submit job")
		return
	}

	w.Header().Set("Location", "/api/v1/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/jobs/{id}.
func (h *ScanHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ExportJob handles GET /api/v1/jobs/{id}/export?format=csv|xlsx|json.
func (h *ScanHandler) ExportJob(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	job, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	if job.Status != jobs.StatusCompleted || job.Result == nil {
		writeJSONError(w, http.StatusConflict, "not_ready", fmt.Sprintf("job is %s", job.Status))
		return
	}

	h.writeResult(w, job.Result, format)
}

// History handles GET /api/v1/history?limit=N.
func (h *ScanHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_enabled", "scan history is disabled")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list scan history", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to list history")
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *ScanHandler) lookupJob(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	if h.jobs == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_enabled", "background jobs are disabled")
		return nil, false
	}
	job, err := h.jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			writeJSONError(w, http.StatusNotFound, "not_found", "job not found")
			return nil, false
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to load job")
		return nil, false
	}
	return job, true
}

func (h *ScanHandler) readFiles(w http.ResponseWriter, r *http.Request) ([]model.InputFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	headers := r.MultipartForm.File[FilesField]
	if len(headers) == 0 {
		return nil, errNoFiles
	}

	files := make([]model.InputFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, model.InputFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *ScanHandler) writeResult(w http.ResponseWriter, res *model.BatchResult, format export.Format) {
	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, res)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scan-%s.%s"`, res.ID, format))
	if err := export.Write(w, res, format); err != nil {
		h.logger.Error("failed to write export", slog.String("format", string(format)), slog.Any("error", err))
	}
}

func (h *ScanHandler) writeBatchError(w http.ResponseWriter, err error) {
	var files []model.FileOutcome
	var be *service.BatchError
	if errors.As(err, &be) {
		files = be.Files
	}

	switch {
	case errors.Is(err, service.ErrAllFilesInvalid), errors.Is(err, service.ErrNoReadableData):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "unprocessable", ErrorDescription: err.Error(), Files: files})
	case errors.Is(err, service.ErrBatchTimeout):
		writeJSONError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.Is(err, context.Canceled):
		writeJSONError(w, http.StatusServiceUnavailable, "canceled", err.Error())
	default:
		h.logger.Error("scan failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "server_error", "scan failed")
	}
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description,omitempty"`
	Files            []model.FileOutcome `json:"files,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
