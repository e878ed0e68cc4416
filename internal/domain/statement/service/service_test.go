package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/currency"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/fixtures"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/layout"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/source"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/validator"
	"github.com/FACorreiaa/ribapurify/pkg/observability"
)

var pdfMagic = []byte("%PDF-1.7\n")

type stubPDF struct {
	pages map[string][][]layout.Fragment
}

func (s *stubPDF) Pages(_ context.Context, data []byte) ([][]layout.Fragment, error) {
	pages, ok := s.pages[string(data)]
	if !ok {
		return nil, errors.New("corrupt xref")
	}
	return pages, nil
}

type stubOCR struct {
	text  string
	delay time.Duration
}

func (s *stubOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.text, nil
}

type recorder struct {
	mu      sync.Mutex
	results []*model.BatchResult
}

func (r *recorder) Record(_ context.Context, res *model.BatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(pdf source.PDFDecoder, ocr source.OCREngine) *ScanService {
	return NewScanService(
		validator.New(0),
		source.NewExtractor(pdf, ocr, nil),
		nil,
		currency.NewDetector("America/New_York"),
		nil,
		testLogger(),
	)
}

func csvFile(name, body string) model.InputFile {
	return model.InputFile{Name: name, MimeType: "text/csv", Data: []byte(body)}
}

func TestScanService_CSVScenario(t *testing.T) {
	svc := newTestService(nil, nil)

	res, err := svc.ProcessBatch(context.Background(), []model.InputFile{
		csvFile("statement.csv", "date,description,amount\n"+
			"2024-01-05, Salary Deposit, 2500.00\n"+
			"2024-01-10, Overdraft Interest Charge, 12.50\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.USD, res.Currency)
	require.Len(t, res.Transactions, 2)

	salary := res.Transactions[0]
	assert.Equal(t, model.CategoryIncome, salary.Category)
	assert.False(t, salary.IsRiba)
	assert.True(t, salary.Amount.Equal(decimal.RequireFromString("2500.00")))

	interest := res.Transactions[1]
	assert.Equal(t, model.CategoryRiba, interest.Category)
	assert.True(t, interest.IsRiba)
	assert.Equal(t, model.ConfidenceHigh, interest.Confidence)
	assert.True(t, interest.Amount.Equal(decimal.RequireFromString("12.50")))

	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Success)
	assert.Equal(t, 1, res.Summary.RibaCount)
	assert.NotEqual(t, "", res.ID.String())
}

func TestScanService_MixedBatch(t *testing.T) {
	pdf := &stubPDF{pages: map[string][][]layout.Fragment{
		string(pdfMagic) + "statement": {
			{
				{Text: "Account Statement", X: 10, Y: 800},
				{Text: "£30.00", X: 400, Y: 700},
				{Text: "01/02/2024", X: 10, Y: 700},
				{Text: "Coffee Shop", X: 120, Y: 700},
				{Text: "Finance charge £4.20", X: 10, Y: 680},
			},
		},
		string(pdfMagic) + "recipe": {
			{{Text: "Whisk two eggs with 200g flour", X: 10, Y: 700}},
		},
	}}
	svc := newTestService(pdf, nil)

	files := []model.InputFile{
		{Name: "statement.pdf", Data: append(append([]byte{}, pdfMagic...), "statement"...)},
		{Name: "recipe.pdf", Data: append(append([]byte{}, pdfMagic...), "recipe"...)},
		{Name: "broken.pdf", Data: append(append([]byte{}, pdfMagic...), "garbage"...)},
		{Name: "fake.pdf", Data: []byte("MZ executable")},
		{Name: "scan.png", Data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D}},
		{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hello")},
	}

	res, err := svc.ProcessBatch(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, model.GBP, res.Currency)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "01/02/2024 Coffee Shop £30.00", res.Transactions[0].Description)
	assert.True(t, res.Transactions[1].IsRiba)

	require.Len(t, res.Files, len(files))
	byName := make(map[string]model.FileOutcome)
	for _, f := range res.Files {
		byName[f.FileName] = f
	}
	assert.True(t, byName["statement.pdf"].Success)
	assert.Equal(t, ReasonNotStatement, byName["recipe.pdf"].Reason)
	assert.Contains(t, byName["broken.pdf"].Reason, "corrupt xref")
	assert.Equal(t, "magic byte mismatch", byName["fake.pdf"].Reason)
	assert.Contains(t, byName["scan.png"].Reason, "no decoder")
	assert.Equal(t, "unsupported file type", byName["notes.txt"].Reason)
}

func TestScanService_OCRTolerance(t *testing.T) {
	ocr := &stubOCR{text: "Monthly statemnt\n12/03/2024 Late fee 25.00\nok"}
	svc := newTestService(nil, ocr)

	res, err := svc.ProcessBatch(context.Background(), []model.InputFile{
		{Name: "scan.jpg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}},
	})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, model.ConfidenceMedium, res.Transactions[0].Confidence)
}

func TestScanService_BatchErrors(t *testing.T) {
	svc := newTestService(nil, nil)

	t.Run("all files invalid", func(t *testing.T) {
		_, err := svc.ProcessBatch(context.Background(), []model.InputFile{
			{Name: "statement.pdf", Data: []byte("not a pdf")},
			{Name: "a.docx", Data: []byte("x")},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAllFilesInvalid)

		var be *BatchError
		require.True(t, errors.As(err, &be))
		assert.Len(t, be.Files, 2)
	})

	t.Run("no files", func(t *testing.T) {
		_, err := svc.ProcessBatch(context.Background(), nil)
		assert.ErrorIs(t, err, ErrAllFilesInvalid)
	})

	t.Run("no readable data", func(t *testing.T) {
		_, err := svc.ProcessBatch(context.Background(), []model.InputFile{
			csvFile("empty.csv", "date,description,amount\n"),
		})
		assert.ErrorIs(t, err, ErrNoReadableData)
	})

	t.Run("timeout discards the batch", func(t *testing.T) {
		slow := newTestService(nil, &stubOCR{text: "Statement balance 10.00", delay: 300 * time.Millisecond}).
			WithTimeout(20 * time.Millisecond)

		res, err := slow.ProcessBatch(context.Background(), []model.InputFile{
			{Name: "scan.png", Data: []byte{0x89, 0x50, 0x4E, 0x47}},
		})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrBatchTimeout)
	})
}

func TestScanService_FileLimit(t *testing.T) {
	svc := newTestService(nil, nil).WithMaxFiles(1)
	body := "date,description,amount\n2024-01-05,Salary Deposit,2500.00\n"

	res, err := svc.ProcessBatch(context.Background(), []model.InputFile{
		csvFile("a.csv", body),
		csvFile("b.csv", body),
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, ReasonFileLimit, res.Files[1].Reason)
	assert.Len(t, res.Transactions, 1)
}

func TestScanService_HistoryAndMetrics(t *testing.T) {
	rec := &recorder{}
	reg := prometheus.NewRegistry()
	svc := newTestService(nil, nil).
		WithHistory(rec).
		WithMetrics(observability.NewMetrics(reg))

	rows := fixtures.New(11).Statement(25)
	res, err := svc.ProcessBatch(context.Background(), []model.InputFile{
		csvFile("generated.csv", string(fixtures.CSV(rows))),
	})
	require.NoError(t, err)

	assert.Len(t, res.Transactions, len(rows))
	assert.Equal(t, fixtures.Count(rows, fixtures.Riba), res.Summary.RibaCount)
	require.Len(t, rec.results, 1)
	assert.Equal(t, res.ID, rec.results[0].ID)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["ribapurify_transactions_total"])
	assert.True(t, names["ribapurify_batch_duration_seconds"])
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "success", outcomeLabel(nil))
	assert.Equal(t, "timeout", outcomeLabel(&BatchError{Err: ErrBatchTimeout}))
	assert.Equal(t, "no_data", outcomeLabel(&BatchError{Err: ErrNoReadableData}))
	assert.Equal(t, "canceled", outcomeLabel(context.Canceled))
	assert.Equal(t, "error", outcomeLabel(errors.New("boom")))
}
