package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// headerKeywords are column names that identify the header row of a bank export.
var headerKeywords = []string{
	"date", "description", "details", "narrative", "amount", "debit", "credit", "balance",
	"reference", "payee", "memo", "type", "value",
	"datum", "buchung", "betrag", "verwendungszweck",
	"fecha", "descripción", "descripcion", "importe",
	"tarikh", "keterangan", "jumlah", "tanggal",
}

const headerSearchLimit = 20

var delimiters = []rune{';', '\t', ',', '|'}

// CSVReader turns delimited bank exports into one line per data row.
type CSVReader struct{}

// Lines returns the data rows of a CSV as text lines. Rows before the header (bank
// metadata) and the header itself are skipped. Non-empty cells are trimmed and
// joined with a single space.
func (CSVReader) Lines(data []byte) ([]string, error) {
	data = normalizeText(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoText
	}

	rawLines := strings.Split(string(data), "\n")
	delimiter, headerIdx := findHeaderRow(rawLines)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var lines []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if startLine, _ := r.FieldPos(0); startLine-1 <= headerIdx {
			continue
		}

		cells := make([]string, 0, len(record))
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	return lines, nil
}

// findHeaderRow returns the delimiter and the 0-based index of the header row.
// The header is the first digit-free line within the search window containing a
// known column name. Without one, the first non-empty line is a header only if it
// carries no digits; otherwise -1 is returned and every row is data.
func findHeaderRow(lines []string) (rune, int) {
	firstIdx := -1
	for i, line := range lines {
		if i >= headerSearchLimit {
			break
		}
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		if firstIdx < 0 {
			firstIdx = i
		}

		delimiter, count := detectDelimiter(line)
		if count >= 1 && isHeaderText(line) {
			return delimiter, i
		}
	}

	if firstIdx < 0 {
		return ',', -1
	}
	first := cleanLine(lines[firstIdx], firstIdx == 0)
	delimiter, count := detectDelimiter(first)
	if count < 1 {
		delimiter = ','
	}
	if hasDigit(first) {
		return delimiter, -1
	}
	return delimiter, firstIdx
}

// isHeaderText reports whether text reads like a column header: no digits and at
// least one known column name.
func isHeaderText(text string) bool {
	if hasDigit(text) {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range headerKeywords {
		if containsWord(lower, kw) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func containsWord(s, word string) bool {
	for idx := strings.Index(s, word); idx >= 0; {
		before := idx == 0 || !isWordByte(s[idx-1])
		end := idx + len(word)
		after := end == len(s) || !isWordByte(s[end])
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += next + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	best := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		if c := strings.Count(line, string(d)); c > bestCount {
			best = d
			bestCount = c
		}
	}
	return best, bestCount
}

// normalizeText strips a UTF-8 BOM and decodes Latin-1 input that is not valid UTF-8.
func normalizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
