package render

import (
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/layout"
)

// MarkStyle is the stroke configuration of one cut-mark family.
type MarkStyle struct {
	LengthPt float64
	WidthPt  float64
}

// Fold line styling for the gutter-fold layout.
const (
	foldLineWidthPt = 0.8
	foldLineDashOn  = 3.0
	foldLineDashOff = 3.0
)

// DrawStandardMarks draws the full mark set of an inner-only grid:
// crosses at every interior cell intersection, half-length ticks where
// interior cut lines meet the outer edges, and L-shaped marks at the
// four grid corners. Every segment is centered on its cut line, half
// inside and half outside the grid.
func DrawStandardMarks(cv *Canvas, plan layout.GridPlan, style MarkStyle) {
	cv.SetStroke(style.WidthPt)
	half := style.LengthPt / 2

	left := plan.X0
	right := plan.X0 + plan.Width()
	bottom := plan.Y0
	top := plan.Y0 + plan.Height()

	var xs, ys []float64
	for j := 1; j < plan.Cols; j++ {
		xs = append(xs, plan.X0+float64(j)*plan.CellW)
	}
	for i := 1; i < plan.Rows; i++ {
		ys = append(ys, plan.Y0+float64(i)*plan.CellH)
	}

	// Interior crosses.
	for _, x := range xs {
		for _, y := range ys {
			cv.Line(x-half, y, x+half, y)
			cv.Line(x, y-half, x, y+half)
		}
	}

	// Edge ticks at interior cut positions.
	for _, x := range xs {
		cv.Line(x, bottom-half, x, bottom+half)
		cv.Line(x, top-half, x, top+half)
	}
	for _, y := range ys {
		cv.Line(left-half, y, left+half, y)
		cv.Line(right-half, y, right+half, y)
	}

	// Corner L marks.
	for _, x := range []float64{left, right} {
		for _, y := range []float64{bottom, top} {
			cv.Line(x-half, y, x+half, y)
			cv.Line(x, y-half, x, y+half)
		}
	}
}

// DrawBleedMarks draws outer-perimeter-only marks for the bleed grid.
// Each cell's drawn size is the bleed canvas, so the marks sit at the
// trim-line fractions inside the cell (border px over bleed px per
// axis) and line up with where the cut actually falls.
func DrawBleedMarks(cv *Canvas, plan layout.GridPlan, geom geometry.Geometry, style MarkStyle) {
	cv.SetStroke(style.WidthPt)
	length := style.LengthPt

	left := plan.X0
	right := plan.X0 + plan.Width()
	bottom := plan.Y0
	top := plan.Y0 + plan.Height()

	fxLeft, fxRight := geom.TrimFractionsX()
	fyBottom, fyTop := geom.TrimFractionsY()

	var xCuts []float64
	for j := 0; j < plan.Cols; j++ {
		cellLeft := plan.X0 + float64(j)*plan.CellW
		xCuts = append(xCuts, cellLeft+fxLeft*plan.CellW, cellLeft+fxRight*plan.CellW)
	}
	var yCuts []float64
	for i := 0; i < plan.Rows; i++ {
		cellBottom := plan.Y0 + float64(i)*plan.CellH
		yCuts = append(yCuts, cellBottom+fyBottom*plan.CellH, cellBottom+fyTop*plan.CellH)
	}

	for _, x := range xCuts {
		cv.Line(x, bottom-length, x, bottom)
		cv.Line(x, top, x, top+length)
	}
	for _, y := range yCuts {
		cv.Line(left-length, y, left, y)
		cv.Line(right, y, right+length, y)
	}
}

// DrawGutterFoldMarks draws the gutter-fold mark set: outer-only marks
// around the two-row silhouette, vertical bridge marks spanning exactly
// the gutter band at every column boundary, and a dashed fold line
// through the gutter's middle. The bridge marks locate the
// fold-adjacent cuts without marking through the fold itself.
func DrawGutterFoldMarks(cv *Canvas, plan layout.GridPlan, style MarkStyle) {
	cv.SetStroke(style.WidthPt)
	length := style.LengthPt

	left := plan.X0
	right := plan.X0 + plan.Width()
	bottom := plan.Y0
	top := plan.Y0 + plan.Height()

	gutterBottom := plan.Y0 + plan.CellH
	gutterTop := gutterBottom + plan.ExtraH

	// Horizontal marks at every row edge, outside only.
	for _, y := range []float64{bottom, gutterBottom, gutterTop, top} {
		cv.Line(left-length, y, left, y)
		cv.Line(right, y, right+length, y)
	}

	// Vertical marks at every column boundary, outside only.
	for j := 0; j <= plan.Cols; j++ {
		x := plan.X0 + float64(j)*plan.CellW
		cv.Line(x, bottom-length, x, bottom)
		cv.Line(x, top, x, top+length)
	}

	// Bridge marks across the gutter band, outer edges included.
	for j := 0; j <= plan.Cols; j++ {
		x := plan.X0 + float64(j)*plan.CellW
		cv.Line(x, gutterBottom, x, gutterTop)
	}

	// Fold line through the middle of the gutter.
	foldY := gutterBottom + plan.ExtraH/2
	cv.SetStroke(foldLineWidthPt)
	cv.DashedLine(left, foldY, right, foldY, foldLineDashOn, foldLineDashOff)
}
