// Package layout computes how card cells fit on a page and which cells
// of a partially filled sheet sit on the visual outer boundary.
package layout

import (
	"fmt"
	"math"
)

// FoldGutterPt is the fixed gap between the front and back rows of the
// gutter-fold layout; the sheet is folded along its middle.
const FoldGutterPt = 12.0

// Margins are the print-safe page margins in points.
type Margins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// DefaultMargins keeps the grid clear of typical printer edge loss
// while still letting a 3x3 poker grid fit on Letter portrait.
func DefaultMargins() Margins {
	return Margins{Left: 6, Right: 6, Top: 6, Bottom: 6}
}

// Reserve are fixed bands subtracted from the printable height before
// the grid is computed: the bottom band holds the footer line and outer
// cut-mark clearance, the top band is optional.
type Reserve struct {
	Top    float64
	Bottom float64
}

// DefaultReserve leaves room for the footer below the grid.
func DefaultReserve() Reserve {
	return Reserve{Bottom: 12}
}

// GridPlan is the computed cell grid for one (page, layout, geometry)
// combination. X0/Y0 is the bottom-left corner of the grid in page
// space; cell iteration maps row 0 to the visually topmost row.
type GridPlan struct {
	Cols  int
	Rows  int
	CellW float64
	CellH float64
	// ExtraH is vertical space inside the grid that is not cell area
	// (the fold gutter); zero for plain grids.
	ExtraH float64
	X0     float64
	Y0     float64
}

// Width returns the full grid width in points.
func (p GridPlan) Width() float64 { return float64(p.Cols) * p.CellW }

// Height returns the full grid height in points, gutter included.
func (p GridPlan) Height() float64 { return float64(p.Rows)*p.CellH + p.ExtraH }

// TopY returns the page-space y of the grid's top edge.
func (p GridPlan) TopY() float64 { return p.Y0 + p.Height() }

// Capacity returns the number of card cells per sheet.
func (p GridPlan) Capacity() int { return p.Cols * p.Rows }

// Plan fits as many cells as possible into the printable area and
// centers the resulting grid. Cols and rows are floored to a minimum of
// 1; if the available space is non-positive the degenerate 1x1 grid is
// anchored just inside the margins and reserves instead of failing, so
// pathological page/margin combinations render (badly) rather than
// crash.
func Plan(pageW, pageH float64, m Margins, cellW, cellH float64, r Reserve) GridPlan {
	availW := pageW - m.Left - m.Right
	availH := pageH - m.Top - m.Bottom - r.Top - r.Bottom

	cols := int(math.Floor(availW / cellW))
	if cols < 1 {
		cols = 1
	}
	rows := int(math.Floor(availH / cellH))
	if rows < 1 {
		rows = 1
	}

	plan := GridPlan{Cols: cols, Rows: rows, CellW: cellW, CellH: cellH}
	plan.X0 = centeredOrigin(m.Left, availW, plan.Width())
	plan.Y0 = centeredOrigin(m.Bottom+r.Bottom, availH, plan.Height())
	return plan
}

// PlanGutterFold computes the two-row fold grid: rows are fixed at 2
// plus the fold gutter, only columns are dynamic. Insufficient height
// is a hard failure carrying the numeric shortfall; the caller decides
// whether another orientation can still satisfy it.
func PlanGutterFold(pageW, pageH float64, m Margins, cellW, cellH float64, r Reserve) (GridPlan, error) {
	availW := pageW - m.Left - m.Right
	availH := pageH - m.Top - m.Bottom - r.Top - r.Bottom

	required := 2*cellH + FoldGutterPt
	if availH < required {
		return GridPlan{}, &SpaceError{RequiredPt: required, AvailablePt: availH}
	}

	cols := int(math.Floor(availW / cellW))
	if cols < 1 {
		cols = 1
	}

	plan := GridPlan{Cols: cols, Rows: 2, CellW: cellW, CellH: cellH, ExtraH: FoldGutterPt}
	plan.X0 = centeredOrigin(m.Left, availW, plan.Width())
	plan.Y0 = centeredOrigin(m.Bottom+r.Bottom, availH, plan.Height())
	return plan, nil
}

// centeredOrigin centers a span of size within the available range
// starting at base; if the span does not fit it is anchored at base.
func centeredOrigin(base, avail, size float64) float64 {
	if avail <= size {
		return base
	}
	return base + (avail-size)/2
}

// SpaceError reports that a fixed-geometry layout cannot fit on the
// page. The message cites the shortfall so users can self-diagnose.
type SpaceError struct {
	RequiredPt  float64
	AvailablePt float64
}

func (e *SpaceError) Error() string {
	return fmt.Sprintf("not enough page space for gutter-fold layout: need %.1fpt of height, have %.1fpt (short %.1fpt)",
		e.RequiredPt, e.AvailablePt, e.RequiredPt-e.AvailablePt)
}
