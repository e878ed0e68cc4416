package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/currency"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/service"
)

func newService() *service.ScanService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewScanService(nil, nil, nil, currency.NewDetector("UTC"), nil, logger)
}

func writeStatement(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,description,amount\n"+
		"2024-01-05, Salary Deposit, 2500.00\n"+
		"2024-01-10, Overdraft Interest Charge, 12.50\n"), 0o600))
	return path
}

func TestRunScan_JSON(t *testing.T) {
	path := writeStatement(t)

	var out, errOut bytes.Buffer
	err := runScan(context.Background(), newService(), []string{path}, scanOptions{format: "json"}, &out, &errOut)
	require.NoError(t, err)

	var res model.BatchResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Transactions, 2)
	assert.Contains(t, errOut.String(), "ok      statement.csv")
	assert.Contains(t, errOut.String(), "2 transactions, 1 riba")
}

func TestRunScan_RibaOnlyCSV(t *testing.T) {
	path := writeStatement(t)

	var out, errOut bytes.Buffer
	err := runScan(context.Background(), newService(), []string{filepath.Join(filepath.Dir(path), "*.csv")},
		scanOptions{format: "csv", ribaOnly: true}, &out, &errOut)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Overdraft Interest Charge")
	assert.NotContains(t, out.String(), "Salary Deposit")
}

func TestRunScan_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	err := runScan(context.Background(), newService(), []string{"/nonexistent/*.pdf"}, scanOptions{}, &out, &errOut)
	assert.ErrorContains(t, err, "no files found")

	err = runScan(context.Background(), newService(), []string{"x"}, scanOptions{format: "doc"}, &out, &errOut)
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("hello"), 0o600))
	err = runScan(context.Background(), newService(), []string{bad}, scanOptions{}, &out, &errOut)
	assert.ErrorIs(t, err, service.ErrAllFilesInvalid)
	assert.Contains(t, errOut.String(), "skipped notes.txt: unsupported file type")
}
