// Package source adapts PDFs, images, CSV and XLSX exports into raw statement lines.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/layout"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/model"
)

// MinLineLength is the shortest trimmed line kept from any source.
const MinLineLength = 6

var (
	ErrDecode    = errors.New("could not decode file")
	ErrNoText    = errors.New("file contains no text")
	ErrNoDecoder = errors.New("no decoder configured for file type")
)

// Extractor dispatches a validated file to the matching text source.
type Extractor struct {
	pdf           PDFDecoder
	ocr           OCREngine
	csv           CSVReader
	xlsx          SpreadsheetReader
	reconstructor *layout.Reconstructor
}

// NewExtractor creates an extractor. A nil decoder or engine disables that file kind.
func NewExtractor(pdf PDFDecoder, ocr OCREngine, reconstructor *layout.Reconstructor) *Extractor {
	if reconstructor == nil {
		reconstructor = layout.NewReconstructor(layout.DefaultRowTolerance)
	}
	return &Extractor{pdf: pdf, ocr: ocr, reconstructor: reconstructor}
}

// Extract returns the lines of f, each at least MinLineLength characters after
// trimming. A panic inside a decoder is returned as an ErrDecode error.
func (e *Extractor) Extract(ctx context.Context, f model.InputFile, kind model.FileKind) (lines []model.RawLine, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	switch kind {
	case model.KindCSV:
		return e.extractCSV(f)
	case model.KindSpreadsheet:
		return e.extractSpreadsheet(f)
	case model.KindPDF:
		return e.extractPDF(ctx, f)
	case model.KindImage:
		return e.extractImage(ctx, f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoDecoder, kind)
	}
}

func (e *Extractor) extractCSV(f model.InputFile) ([]model.RawLine, error) {
	rows, err := e.csv.Lines(f.Data)
	if err != nil {
		return nil, err
	}
	return collect(rows, 1, f.Name), nil
}

func (e *Extractor) extractSpreadsheet(f model.InputFile) ([]model.RawLine, error) {
	rows, err := e.xlsx.Lines(f.Data)
	if err != nil {
		return nil, err
	}
	return collect(rows, 1, f.Name), nil
}

func (e *Extractor) extractPDF(ctx context.Context, f model.InputFile) ([]model.RawLine, error) {
	if e.pdf == nil {
		return nil, fmt.Errorf("%w: pdf", ErrNoDecoder)
	}
	pages, err := e.pdf.Pages(ctx, f.Data)
	if err != nil {
		return nil, err
	}

	var out []model.RawLine
	for i, frags := range pages {
		out = append(out, collect(e.reconstructor.Lines(frags), i+1, f.Name)...)
	}
	return out, nil
}

func (e *Extractor) extractImage(ctx context.Context, f model.InputFile) ([]model.RawLine, error) {
	if e.ocr == nil {
		return nil, fmt.Errorf("%w: image", ErrNoDecoder)
	}
	text, err := e.ocr.Recognize(ctx, f.Data)
	if err != nil {
		return nil, err
	}
	return collect(strings.Split(text, "\n"), 1, f.Name), nil
}

func collect(texts []string, page int, file string) []model.RawLine {
	out := make([]model.RawLine, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if len([]rune(t)) < MinLineLength {
			continue
		}
		out = append(out, model.RawLine{Text: t, Page: page, SourceFile: file})
	}
	return out
}
