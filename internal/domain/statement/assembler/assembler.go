// Package assembler builds classified transactions from raw statement lines.
package assembler

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/classifier"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/currency"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/normalizer"
)

const (
	// DescriptionLength is the number of characters of a line kept as description.
	DescriptionLength = 80
	// MinDatedLineLength is the length a dated, non-Riba line must exceed to count
	// as a transaction row.
	MinDatedLineLength = 15

	placeholderDescription = "Transaction"
	isoDate                = "2006-01-02"
)

// Assembler turns lines into deduplicated transactions.
type Assembler struct {
	classifier *classifier.Classifier
	amounts    *normalizer.AmountParser
	now        func() time.Time
	newID      func() string
}

// New creates an assembler.
func New(c *classifier.Classifier, amounts *normalizer.AmountParser) *Assembler {
	if c == nil {
		c = classifier.New()
	}
	if amounts == nil {
		amounts = normalizer.NewAmountParser(normalizer.DefaultMinAccountDigits)
	}
	return &Assembler{
		classifier: c,
		amounts:    amounts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithClock sets the clock used for the fallback date.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble builds transactions in line order. A line qualifies when its amount is
// positive and it is either Riba or dated and longer than MinDatedLineLength.
// Duplicates by (description, amount, date) are dropped, keeping the first.
func (a *Assembler) Assemble(lines []model.RawLine, dominant model.Currency) []model.Transaction {
	today := a.now().Format(isoDate)
	seen := make(map[string]struct{}, len(lines))
	out := make([]model.Transaction, 0, len(lines))

	for _, line := range lines {
		tx, ok := a.build(line, dominant, today)
		if !ok {
			continue
		}
		key := dedupKey(tx)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out
}

func (a *Assembler) build(line model.RawLine, dominant model.Currency, today string) (model.Transaction, bool) {
	text := line.Text
	result := a.classifier.Classify(text)
	date := normalizer.ExtractDate(text)
	amount := a.amounts.Parse(text, date)

	if !amount.IsPositive() {
		return model.Transaction{}, false
	}
	if !result.IsRiba && (date == "" || utf8.RuneCountInString(text) <= MinDatedLineLength) {
		return model.Transaction{}, false
	}

	cur := dominant
	if override, ok := currency.LineOverride(text); ok {
		cur = override
	}
	if date == "" {
		date = today
	}

	return model.Transaction{
		ID:           a.newID(),
		Date:         date,
		Description:  describe(text),
		Amount:       amount,
		OriginalText: text,
		IsRiba:       result.IsRiba,
		Currency:     cur,
		Category:     result.Category,
		Confidence:   result.Confidence,
		Reason:       result.Reason,
		Page:         line.Page,
		SourceFile:   line.SourceFile,
	}, true
}

func describe(text string) string {
	if utf8.RuneCountInString(text) > DescriptionLength {
		text = string([]rune(text)[:DescriptionLength])
	}
	if text = strings.TrimSpace(text); text == "" {
		return placeholderDescription
	}
	return text
}

func dedupKey(tx model.Transaction) string {
	return tx.Description + "\x00" + tx.Amount.StringFixed(2) + "\x00" + tx.Date
}

// Dedupe removes repeated transactions by (description, amount, date) and any with
// a non-positive amount. Applying it twice gives the same result as applying it once.
func Dedupe(txs []model.Transaction) []model.Transaction {
	seen := make(map[string]struct{}, len(txs))
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Amount.GreaterThan(decimal.Zero) {
			continue
		}
		key := dedupKey(tx)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out
}
