// Package fixtures generates realistic statement rows with gofakeit for tests and
// local demos. Output is deterministic for a given seed.
package fixtures

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// RowKind is the expected classification of a generated row.
type RowKind int

const (
	Purchase RowKind = iota
	Income
	Riba
)

// Row is one generated statement entry.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        RowKind
}

// Line renders the row the way a text statement prints it.
func (r Row) Line() string {
	return r.Date.Format("02/01/2006") + " " + r.Description + " " + r.Amount.StringFixed(2)
}

var purchaseDescriptions = []string{
	"Coffee and pastry",
	"Weekly groceries",
	"Gas station fill-up",
	"Restaurant dinner",
	"Office supplies",
	"Book purchase",
	"Movie tickets",
	"Electronics store",
	"Clothing purchase",
	"Pharmacy",
}

var incomeDescriptions = []string{
	"Monthly salary deposit",
	"Payroll ACME Ltd",
	"Tax refund",
	"Transfer from savings",
	"Card cashback",
}

var ribaDescriptions = []string{
	"Overdraft interest charge",
	"Finance charge",
	"Credit card interest",
	"Interest charged on balance",
	"Cash advance fee",
}

// Generator produces rows from a seeded faker.
type Generator struct {
	faker *gofakeit.Faker
	start time.Time
}

// New creates a generator. Dates start at 2024-01-01.
func New(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Row generates a single row of the given kind dated day days after the start.
func (g *Generator) Row(kind RowKind, day int) Row {
	var (
		pool     []string
		min, max float64
	)
	switch kind {
	case Income:
		pool, min, max = incomeDescriptions, 500, 9000
	case Riba:
		pool, min, max = ribaDescriptions, 1, 120
	default:
		pool, min, max = purchaseDescriptions, 1, 400
	}

	return Row{
		Date:        g.start.AddDate(0, 0, day),
		Description: pool[g.faker.Number(0, len(pool)-1)],
		Amount:      decimal.NewFromFloat(g.faker.Price(min, max)).Round(2),
		Kind:        kind,
	}
}

// Statement generates n rows on consecutive days with roughly one Riba row in
// five and one income row in four.
func (g *Generator) Statement(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		kind := Purchase
		switch {
		case i%5 == 4:
			kind = Riba
		case i%4 == 0:
			kind = Income
		}
		rows[i] = g.Row(kind, i)
	}
	return rows
}

// CSV renders rows as a date,description,amount export with ISO dates.
func CSV(rows []Row) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "description", "amount"})
	for _, r := range rows {
		_ = w.Write([]string{r.Date.Format("2006-01-02"), r.Description, r.Amount.StringFixed(2)})
	}
	w.Flush()
	return buf.Bytes()
}

// Count returns the number of rows of the given kind.
func Count(rows []Row, kind RowKind) int {
	n := 0
	for _, r := range rows {
		if r.Kind == kind {
			n++
		}
	}
	return n
}
