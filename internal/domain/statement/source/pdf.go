package source

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/FACorreiaa/ribapurify/internal/domain/statement/layout"
)

// PDFDecoder turns PDF bytes into positioned text fragments, one slice per page.
type PDFDecoder interface {
	Pages(ctx context.Context, data []byte) ([][]layout.Fragment, error)
}

// PDFTextDecoder reads the text layer with github.com/dslipak/pdf. Scanned PDFs
// without a text layer yield pages with no fragments.
type PDFTextDecoder struct{}

// NewPDFTextDecoder creates a decoder backed by the embedded PDF reader.
func NewPDFTextDecoder() *PDFTextDecoder {
	return &PDFTextDecoder{}
}

// Pages decodes every page. The reader panics on some malformed inputs; those are
// returned as errors.
func (d *PDFTextDecoder) Pages(ctx context.Context, data []byte) (pages [][]layout.Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", ErrDecode, err)
	}

	n := reader.NumPage()
	pages = make([][]layout.Fragment, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, mergeGlyphs(p.Content().Text))
	}
	return pages, nil
}

// mergeGlyphs joins the per-glyph text items of a content stream into word-level
// fragments. Glyphs on the same baseline whose gap is below a fraction of the font
// size belong to the same fragment.
func mergeGlyphs(texts []pdf.Text) []layout.Fragment {
	var (
		frags []layout.Fragment
		cur   strings.Builder
		start pdf.Text
		end   float64
		open  bool
	)

	flush := func() {
		if open && strings.TrimSpace(cur.String()) != "" {
			frags = append(frags, layout.Fragment{Text: cur.String(), X: start.X, Y: start.Y})
		}
		cur.Reset()
		open = false
	}

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		if open {
			gap := t.X - end
			maxGap := math.Max(t.FontSize, 1) * 0.3
			if math.Abs(t.Y-start.Y) > 0.5 || gap > maxGap || gap < -maxGap {
				flush()
			}
		}
		if !open {
			start = t
			open = true
		}
		cur.WriteString(t.S)
		end = t.X + t.W
	}
	flush()

	return frags
}
