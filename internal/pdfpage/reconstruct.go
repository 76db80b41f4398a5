package pdfpage

import (
	"math"
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical proximity threshold, in layout
// units, within which two runs are treated as sharing a line.
const DefaultLineTolerance = 10.0

// Reconstructor rebuilds left-to-right, top-to-bottom reading order from
// unordered positioned text runs. Purely geometric: no font or
// script-direction awareness, so right-to-left and multi-column layouts
// are out of scope.
type Reconstructor struct {
	tolerance float64
}

// NewReconstructor creates a Reconstructor with the given line-grouping
// tolerance. Non-positive values fall back to DefaultLineTolerance.
func NewReconstructor(tolerance float64) *Reconstructor {
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}
	return &Reconstructor{tolerance: tolerance}
}

// PageMarkup reconstructs one page's markup from its runs. pageHeight
// flips the native bottom-up coordinates into top-down reading order
// before grouping.
func (r *Reconstructor) PageMarkup(runs []TextRun, pageHeight float64) string {
	flipped := make([]TextRun, len(runs))
	copy(flipped, runs)
	for i := range flipped {
		flipped[i].Y = pageHeight - flipped[i].Y
	}
	return r.markup(r.GroupLines(flipped))
}

// GroupLines sorts runs into reading order and groups them into lines.
// Input Y coordinates must already be top-down. Runs whose Y values differ
// by less than the tolerance are treated as the same line and ordered by
// ascending X; a line closes once a run's Y departs from the line's anchor
// Y by the tolerance or more.
func (r *Reconstructor) GroupLines(runs []TextRun) [][]TextRun {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		dy := sorted[i].Y - sorted[j].Y
		if math.Abs(dy) >= r.tolerance {
			return dy < 0
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]TextRun
	var current []TextRun
	var anchorY float64

	for _, run := range sorted {
		if len(current) == 0 {
			current = []TextRun{run}
			anchorY = run.Y
			continue
		}
		if math.Abs(run.Y-anchorY) < r.tolerance {
			current = append(current, run)
			continue
		}
		lines = append(lines, current)
		current = []TextRun{run}
		anchorY = run.Y
	}
	lines = append(lines, current)

	return lines
}

// markupEscaper escapes angle brackets only: run text is embedded verbatim
// otherwise, since the source text is plain (never markup).
var markupEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// markup emits one block per line in closing order, dropping lines that
// are empty after trimming. Runs within a line concatenate with no
// inserted separator beyond what the source text contains.
func (r *Reconstructor) markup(lines [][]TextRun) string {
	var buf strings.Builder
	for _, line := range lines {
		var text strings.Builder
		for _, run := range line {
			text.WriteString(markupEscaper.Replace(run.Text))
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("<p>")
		buf.WriteString(text.String())
		buf.WriteString("</p>")
	}
	return buf.String()
}
