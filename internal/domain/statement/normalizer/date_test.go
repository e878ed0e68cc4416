package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"slash day first", "01/02/2024 Coffee Shop 30.00", "01/02/2024"},
		{"dots short year", "Paid on 1.2.24 at store 12.00", "1.2.24"},
		{"dashes", "15-03-2024 SALARY ACME 3,000.00", "15-03-2024"},
		{"year first", "2024-01-05 Monthly interest charge 12.50", "2024-01-05"},
		{"day month year", "15 Mar 2024 Transfer to savings 100.00", "15 Mar 2024"},
		{"full month name", "5 January 24 Refund 9.99", "5 January 24"},
		{"month day year", "Mar 15, 2024 Grocery 45.10", "Mar 15, 2024"},
		{"case insensitive", "15 MAR 2024 Grocery", "15 MAR 2024"},
		{"numeric wins over textual", "Mar 15, 2024 posted 16/03/2024", "16/03/2024"},
		{"no date", "Opening balance 1,000.00", ""},
		{"amount is not a date", "Fee 1.234,56", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDate(tt.line))
		})
	}
}
