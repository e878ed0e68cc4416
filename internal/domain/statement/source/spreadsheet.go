package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// preferredSheets are sheet names tried before falling back to the first sheet.
var preferredSheets = []string{"transactions", "statement", "kontoauszug", "extracto", "penyata", "sheet1"}

// SpreadsheetReader turns XLSX bank exports into one line per data row.
type SpreadsheetReader struct{}

// Lines reads the transaction sheet, skips everything up to the header row and
// joins the non-empty cells of each remaining row with a single space.
func (SpreadsheetReader) Lines(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", ErrDecode, err)
	}
	defer f.Close()

	sheet := findTransactionSheet(f.GetSheetList())
	if sheet == "" {
		return nil, ErrNoText
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrDecode, sheet, err)
	}

	header := -1
	for i, row := range rows {
		if i >= headerSearchLimit {
			break
		}
		if isHeaderText(strings.Join(row, " ")) {
			header = i
			break
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows[header+1:] {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	}
	return lines, nil
}

func findTransactionSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range preferredSheets {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}
