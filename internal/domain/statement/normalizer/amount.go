package normalizer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMinAccountDigits is the length from which a bare digit run is treated as
// an account or reference number and ignored.
const DefaultMinAccountDigits = 5

var (
	digitRun = regexp.MustCompile(`\d+`)

	// Group 1 is either comma-thousands/dot-decimal or dot-thousands/comma-decimal,
	// always with exactly two fractional digits.
	amountPattern = regexp.MustCompile(
		`(?:^|[^\d.,])((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}|(?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})(?:[^\d]|$)`,
	)

	commaDecimal = regexp.MustCompile(`,\d{2}$`)
)

// AmountParser extracts the monetary magnitude of a statement line.
type AmountParser struct {
	minAccountDigits int
}

// NewAmountParser creates a parser. Values below 1 select DefaultMinAccountDigits.
func NewAmountParser(minAccountDigits int) *AmountParser {
	if minAccountDigits < 1 {
		minAccountDigits = DefaultMinAccountDigits
	}
	return &AmountParser{minAccountDigits: minAccountDigits}
}

var defaultAmountParser = NewAmountParser(DefaultMinAccountDigits)

// ParseAmount parses line with the default account-number threshold.
func ParseAmount(line, date string) decimal.Decimal {
	return defaultAmountParser.Parse(line, date)
}

// Parse returns the first amount found in line once the date substring and long
// digit runs have been removed. It returns zero when nothing matches. The result is
// always non-negative; signs and Dr/Cr markers are not interpreted.
func (p *AmountParser) Parse(line, date string) decimal.Decimal {
	if date != "" {
		line = strings.Replace(line, date, " ", 1)
	}
	line = p.stripAccountNumbers(line)

	m := amountPattern.FindStringSubmatch(line)
	if m == nil {
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(normalizeNumber(m[1]))
	if err != nil {
		return decimal.Zero
	}
	return amount.Abs()
}

// stripAccountNumbers blanks digit runs of at least minAccountDigits that are not
// attached to a decimal or grouping separator.
func (p *AmountParser) stripAccountNumbers(line string) string {
	idx := digitRun.FindAllStringIndex(line, -1)
	if idx == nil {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	last := 0
	for _, loc := range idx {
		start, end := loc[0], loc[1]
		if end-start < p.minAccountDigits {
			continue
		}
		if start > 0 && isSeparator(line[start-1]) {
			continue
		}
		if end < len(line) && isSeparator(line[end]) {
			continue
		}
		b.WriteString(line[last:start])
		b.WriteByte(' ')
		last = end
	}
	b.WriteString(line[last:])
	return b.String()
}

func isSeparator(c byte) bool {
	return c == '.' || c == ','
}

// normalizeNumber converts a matched amount into a plain dot-decimal string.
func normalizeNumber(s string) string {
	if commaDecimal.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	}
	return strings.ReplaceAll(s, ",", "")
}
