package money

import (
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Locale describes how one currency is displayed.
type Locale struct {
	Tag      string // BCP 47 tag the format follows
	Grapheme string
	Template string // go-money template: "$" is the grapheme, "1" the amount
	Decimal  string
	Thousand string
	// Indian groups the integer part as 12,34,567 instead of 1,234,567.
	Indian bool
}

// locales maps each supported currency to its display locale.
var locales = map[string]Locale{
	"USD": {Tag: "en-US", Grapheme: "$", Template: "$1", Decimal: ".", Thousand: ","},
	"GBP": {Tag: "en-GB", Grapheme: "£", Template: "$1", Decimal: ".", Thousand: ","},
	"EUR": {Tag: "de-DE", Grapheme: "€", Template: "1 $", Decimal: ",", Thousand: "."},
	"INR": {Tag: "en-IN", Grapheme: "₹", Template: "$1", Decimal: ".", Thousand: ",", Indian: true},
	"SAR": {Tag: "en-SA", Grapheme: "SAR", Template: "$ 1", Decimal: ".", Thousand: ","},
	"AED": {Tag: "en-AE", Grapheme: "AED", Template: "$ 1", Decimal: ".", Thousand: ","},
	"MYR": {Tag: "ms-MY", Grapheme: "RM", Template: "$1", Decimal: ".", Thousand: ","},
	"IDR": {Tag: "id-ID", Grapheme: "Rp", Template: "$ 1", Decimal: ",", Thousand: "."},
}

// Every supported currency is registered with go-money in its display locale,
// so Money.Display renders through go-money's formatter.
func init() {
	for code, l := range locales {
		money.AddCurrency(code, l.Grapheme, l.Template, l.Decimal, l.Thousand, 2)
	}
}

// LocaleFor returns the display locale of a currency code.
func LocaleFor(code string) (Locale, bool) {
	l, ok := locales[strings.ToUpper(code)]
	return l, ok
}

// Format renders amount in the display locale of code. Unsupported codes fall
// back to "<amount> <code>".
func Format(amount decimal.Decimal, code string) string {
	return NewFromDecimal(amount, code).Display()
}

// lakh regroups the first digit run of a go-money display string in the Indian
// system, e.g. "₹1,234,567.89" -> "₹12,34,567.89".
func lakh(display string) string {
	start := strings.IndexFunc(display, unicode.IsDigit)
	if start < 0 {
		return display
	}
	end := start
	for end < len(display) && (display[end] == ',' || (display[end] >= '0' && display[end] <= '9')) {
		end++
	}
	digits := strings.ReplaceAll(display[start:end], ",", "")
	return display[:start] + groupLakh(digits) + display[end:]
}

// groupLakh separates the last three digits, then every two.
func groupLakh(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	parts = append(parts, tail)
	return strings.Join(parts, ",")
}
