package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

func sampleResult() *model.BatchResult {
	txs := []model.Transaction{
		{
			ID: "a", Date: "2024-01-05", Description: "Salary Deposit", Amount: decimal.RequireFromString("2500"),
			Currency: model.USD, Category: model.CategoryIncome, Confidence: model.ConfidenceHigh,
			Reason: "salary or wage income", Page: 1, SourceFile: "s.csv",
		},
		{
			ID: "b", Date: "2024-01-10", Description: "Overdraft Interest, Charge", Amount: decimal.RequireFromString("12.5"),
			Currency: model.USD, Category: model.CategoryRiba, Confidence: model.ConfidenceHigh, IsRiba: true,
			Reason: "explicit interest or finance charge", Page: 1, SourceFile: "s.csv",
		},
	}
	return &model.BatchResult{
		ID:           uuid.MustParse("6f1c2d8e-8a53-4c52-9d0e-0a4c2b1f7e11"),
		Currency:     model.USD,
		Transactions: txs,
		Summary:      model.Summarize(txs),
		ProcessedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleResult())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"date", "description", "amount", "display_amount", "currency", "category",
		"is_riba", "confidence", "reason", "source_file", "page",
	}, records[0])
	assert.Equal(t, "2500.00", records[1][2])
	assert.Equal(t, "$2,500.00", records[1][3])
	assert.Equal(t, "Overdraft Interest, Charge", records[2][1])
	assert.Equal(t, "true", records[2][6])
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TransactionsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(TransactionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Salary Deposit", rows[1][1])
	assert.Equal(t, "yes", rows[2][5])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(summary), 8)
	assert.Equal(t, []string{"Dominant currency", "USD"}, summary[1])
	assert.Equal(t, []string{"USD", "$2,512.50", "$12.50", "$2,500.00", "2"}, summary[7])
}

func TestWrite(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "USD", decoded["currency"])

	buf.Reset()
	require.NoError(t, Write(&buf, res, FormatCSV))
	assert.Contains(t, buf.String(), "Salary Deposit")

	assert.ErrorIs(t, Write(&buf, res, Format("pdf")), ErrUnknownFormat)
}
