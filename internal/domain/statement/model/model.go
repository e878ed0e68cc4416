// Package model holds the data types shared by the statement scanning pipeline:
// raw lines, classified transactions, per-file outcomes and batch results.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 code from the fixed set the scanner understands.
type Currency string

const (
	USD Currency = "USD"
	GBP Currency = "GBP"
	EUR Currency = "EUR"
	INR Currency = "INR"
	SAR Currency = "SAR"
	AED Currency = "AED"
	MYR Currency = "MYR"
	IDR Currency = "IDR"
)

// Currencies lists every supported currency in priority order.
// Ties during dominant currency detection go to the earlier entry.
var Currencies = []Currency{USD, GBP, EUR, INR, SAR, AED, MYR, IDR}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// Category is the coarse bucket a transaction is classified into.
type Category string

const (
	CategoryIncome        Category = "income"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryTransfer      Category = "transfer"
	CategoryRiba          Category = "riba"
	CategoryUncategorized Category = "uncategorized"
)

// Confidence is a three-level trust label, not a probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FileKind identifies which text source handles an admitted file.
type FileKind string

const (
	KindPDF         FileKind = "pdf"
	KindCSV         FileKind = "csv"
	KindImage       FileKind = "image"
	KindSpreadsheet FileKind = "xlsx"
)

// Tabular reports whether the kind carries structured rows rather than page text.
func (k FileKind) Tabular() bool {
	return k == KindCSV || k == KindSpreadsheet
}

// InputFile is a file handed to the pipeline: name, declared MIME type and content.
type InputFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Size returns the content length in bytes.
func (f InputFile) Size() int64 {
	return int64(len(f.Data))
}

// RawLine is one reconstructed line of source text with its provenance.
type RawLine struct {
	Text       string
	Page       int
	SourceFile string
}

// Transaction is a single classified statement line.
type Transaction struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	OriginalText string          `json:"original_text"`
	IsRiba       bool            `json:"is_riba"`
	Currency     Currency        `json:"currency"`
	Category     Category        `json:"category"`
	Confidence   Confidence      `json:"confidence"`
	Reason       string          `json:"reason,omitempty"`
	Page         int             `json:"page"`
	SourceFile   string          `json:"source_file,omitempty"`
}

// SetRiba is the manual override applied by a reviewer. Marking a line as Riba
// moves it to the riba category; clearing it moves it to uncategorized.
func (t *Transaction) SetRiba(isRiba bool) {
	t.IsRiba = isRiba
	if isRiba {
		t.Category = CategoryRiba
		return
	}
	if t.Category == CategoryRiba {
		t.Category = CategoryUncategorized
	}
}

// FileOutcome records whether a single file contributed lines to a batch.
type FileOutcome struct {
	FileName string   `json:"file_name"`
	Kind     FileKind `json:"kind,omitempty"`
	Success  bool     `json:"success"`
	Reason   string   `json:"reason,omitempty"`
	Lines    int      `json:"lines"`
}

// BatchResult is the complete output of one processing run.
type BatchResult struct {
	ID           uuid.UUID     `json:"id"`
	Currency     Currency      `json:"currency"`
	Transactions []Transaction `json:"transactions"`
	Files        []FileOutcome `json:"files"`
	Summary      Summary       `json:"summary"`
	ProcessedAt  time.Time     `json:"processed_at"`
	Duration     time.Duration `json:"duration_ns"`
}
