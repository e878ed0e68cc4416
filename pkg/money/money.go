// Package money holds the display contract for every currency the scanner
// reports. Amounts are rounded through go-money so each code uses its ISO-4217
// minor unit.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a monetary value in minor units.
type Money struct {
	m *money.Money
}

// NewFromDecimal creates Money from a decimal, rounding half away from zero to
// the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	multiplier := decimal.New(1, int32(fractionDigits(currencyCode)))
	return &Money{m: money.New(amount.Mul(multiplier).Round(0).IntPart(), currencyCode)}
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Add sums two values. Mixing currencies is an error.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: sum}, nil
}

// Decimal converts back to major units.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Display renders the value in the currency's display locale. Currencies without
// a locale render as "<amount> <code>".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	l, ok := LocaleFor(m.Currency())
	if !ok {
		return m.Decimal().StringFixed(int32(m.m.Currency().Fraction)) + " " + m.Currency()
	}
	if l.Indian {
		return lakh(m.m.Display())
	}
	return m.m.Display()
}

// Round rounds amount to the minor unit of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return NewFromDecimal(amount, code).Decimal()
}

func fractionDigits(code string) int {
	if c := money.GetCurrency(code); c != nil {
		return c.Fraction
	}
	return 2
}
