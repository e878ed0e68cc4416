package model

import (
	"github.com/shopspring/decimal"
)

// CurrencyTotals aggregates amounts for one currency.
type CurrencyTotals struct {
	Total decimal.Decimal `json:"total"`
	Riba  decimal.Decimal `json:"riba"`
	Clean decimal.Decimal `json:"clean"`
	Count int             `json:"count"`
}

// Summary holds the aggregates shown next to a transaction list.
// Riba totals are the amount a user would need to purify.
type Summary struct {
	TransactionCount int                         `json:"transaction_count"`
	RibaCount        int                         `json:"riba_count"`
	RibaShare        float64                     `json:"riba_share"`
	ByCurrency       map[Currency]CurrencyTotals `json:"by_currency"`
	ByCategory       map[Category]int            `json:"by_category"`
	ByConfidence     map[Confidence]int          `json:"by_confidence"`
}

// Summarize computes aggregates over txs. Amounts in different currencies are
// never added together.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		TransactionCount: len(txs),
		ByCurrency:       make(map[Currency]CurrencyTotals),
		ByCategory:       make(map[Category]int),
		ByConfidence:     make(map[Confidence]int),
	}

	for _, tx := range txs {
		totals := s.ByCurrency[tx.Currency]
		totals.Total = totals.Total.Add(tx.Amount)
		totals.Count++
		if tx.IsRiba {
			totals.Riba = totals.Riba.Add(tx.Amount)
			s.RibaCount++
		} else {
			totals.Clean = totals.Clean.Add(tx.Amount)
		}
		s.ByCurrency[tx.Currency] = totals

		s.ByCategory[tx.Category]++
		s.ByConfidence[tx.Confidence]++
	}

	if s.TransactionCount > 0 {
		s.RibaShare = float64(s.RibaCount) / float64(s.TransactionCount)
	}

	return s
}
