// Package export renders batch results as JSON, CSV or XLSX downloads.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/pkg/money"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a case-insensitive format name. Empty selects JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Row is the flat, spreadsheet-friendly view of a transaction.
type Row struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Display     string `csv:"display_amount"`
	Currency    string `csv:"currency"`
	Category    string `csv:"category"`
	IsRiba      bool   `csv:"is_riba"`
	Confidence  string `csv:"confidence"`
	Reason      string `csv:"reason"`
	SourceFile  string `csv:"source_file"`
	Page        int    `csv:"page"`
}

// Rows flattens transactions in their original order.
func Rows(txs []model.Transaction) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, Row{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Display:     money.NewFromDecimal(tx.Amount, string(tx.Currency)).Display(),
			Currency:    string(tx.Currency),
			Category:    string(tx.Category),
			IsRiba:      tx.IsRiba,
			Confidence:  string(tx.Confidence),
			Reason:      tx.Reason,
			SourceFile:  tx.SourceFile,
			Page:        tx.Page,
		})
	}
	return rows
}

// CSV renders the transactions of res with a header row.
func CSV(res *model.BatchResult) ([]byte, error) {
	rows := Rows(res.Transactions)
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}

// Write renders res to w in the given format.
func Write(w io.Writer, res *model.BatchResult, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatCSV:
		data, err = CSV(res)
	case FormatXLSX:
		data, err = XLSX(res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
