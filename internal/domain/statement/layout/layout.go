// Package layout rebuilds reading-order lines from positioned PDF text fragments.
// PDF text layers carry no row/column order, so fragments are bucketed into rows
// by vertical position and ordered left to right within each row.
package layout

import (
	"math"
	"sort"
	"strings"
)

// DefaultRowTolerance is the vertical distance, in PDF user-space units, under
// which two fragments are considered to sit on the same row.
const DefaultRowTolerance = 4.0

// Fragment is a run of text at a position on the page. PDF coordinates have their
// origin at the bottom-left corner, so a larger Y is higher on the page.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

type row struct {
	y         float64
	fragments []Fragment
}

// Reconstructor groups fragments into lines.
type Reconstructor struct {
	tolerance float64
}

// NewReconstructor creates a reconstructor. A non-positive tolerance selects
// DefaultRowTolerance.
func NewReconstructor(tolerance float64) *Reconstructor {
	if tolerance <= 0 {
		tolerance = DefaultRowTolerance
	}
	return &Reconstructor{tolerance: tolerance}
}

// Tolerance returns the row bucketing tolerance in use.
func (r *Reconstructor) Tolerance() float64 {
	return r.tolerance
}

// Lines returns one string per row, top of page first. A fragment joins the first
// row whose key is within tolerance; otherwise it opens a new row keyed by its own Y.
// Widely separated columns on the same row end up on one line.
func (r *Reconstructor) Lines(fragments []Fragment) []string {
	rows := make([]*row, 0, 32)

	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		f.Text = text

		var target *row
		for _, candidate := range rows {
			if math.Abs(candidate.y-f.Y) < r.tolerance {
				target = candidate
				break
			}
		}
		if target == nil {
			target = &row{y: f.Y}
			rows = append(rows, target)
		}
		target.fragments = append(target.fragments, f)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].y > rows[j].y
	})

	lines := make([]string, 0, len(rows))
	for _, rw := range rows {
		sort.SliceStable(rw.fragments, func(i, j int) bool {
			return rw.fragments[i].X < rw.fragments[j].X
		})

		parts := make([]string, len(rw.fragments))
		for i, f := range rw.fragments {
			parts[i] = f.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	return lines
}

// ReconstructLines is a convenience wrapper using DefaultRowTolerance.
func ReconstructLines(fragments []Fragment) []string {
	return NewReconstructor(DefaultRowTolerance).Lines(fragments)
}
