package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/pkg/money"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "Summary"
)

var transactionHeader = []any{
	"Date", "Description", "Amount", "Currency", "Category", "Riba", "Confidence", "Reason", "Source", "Page",
}

// XLSX renders res as a workbook with a Transactions sheet and a Summary sheet.
func XLSX(res *model.BatchResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeTransactions(f, res.Transactions, bold); err != nil {
		return nil, err
	}
	if err := writeSummary(f, res, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTransactions(f *excelize.File, txs []model.Transaction, headerStyle int) error {
	if err := setRow(f, TransactionsSheet, 1, transactionHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(TransactionsSheet, "A1", "J1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, tx := range txs {
		riba := "no"
		if tx.IsRiba {
			riba = "yes"
		}
		row := []any{
			tx.Date, tx.Description, tx.Amount.InexactFloat64(), string(tx.Currency),
			string(tx.Category), riba, string(tx.Confidence), tx.Reason, tx.SourceFile, tx.Page,
		}
		if err := setRow(f, TransactionsSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(TransactionsSheet, "B", "B", 48)
}

func writeSummary(f *excelize.File, res *model.BatchResult, headerStyle int) error {
	s := res.Summary
	rows := [][]any{
		{"Batch", res.ID.String()},
		{"Dominant currency", string(res.Currency)},
		{"Transactions", s.TransactionCount},
		{"Riba transactions", s.RibaCount},
		{"Riba share", s.RibaShare},
		{},
		{"Currency", "Total", "Riba", "Clean", "Count"},
	}
	for _, c := range model.Currencies {
		totals, ok := s.ByCurrency[c]
		if !ok {
			continue
		}
		code := string(c)
		rows = append(rows, []any{
			code,
			money.Format(totals.Total, code),
			money.Format(totals.Riba, code),
			money.Format(totals.Clean, code),
			totals.Count,
		})
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A7", "E7", headerStyle); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
