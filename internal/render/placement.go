package render

import (
	"math"

	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/layout"
	"github.com/pnpforge/cardsheets/internal/prep"
	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// scaleTolerancePt absorbs the rounding slack between the pixel-derived
// and point-derived cell sizes when computing the outer-bleed scale.
const scaleTolerancePt = 0.5

// Engine places processed card images into grid cells with the correct
// per-layout transform: column mirroring for the backs of the standard
// and bleed grids, 180° rotation for gutter-fold backs.
type Engine struct {
	geom geometry.Geometry
	prep *prep.Preprocessor
	log  *logger.Logger
}

func NewEngine(geom geometry.Geometry, pre *prep.Preprocessor, log *logger.Logger) *Engine {
	return &Engine{geom: geom, prep: pre, log: log}
}

// PlaceInnerGrid draws one side of a standard sheet. slots is the
// row-major image list padded to the grid capacity (empty string =
// padding cell). Back sides mirror the column index within each row so
// short-edge duplex printing lines fronts and backs up for cutting.
// outerBleedPx > 0 retains a bleed fringe at the silhouette of the
// occupied region when the source art has bleed pixels to give.
func (e *Engine) PlaceInnerGrid(cv *Canvas, plan layout.GridPlan, slots []string, back bool, outerBleedPx int) {
	var keeps [][]models.KeepPx
	if outerBleedPx > 0 {
		occ := layout.BuildOccupancy(slots, plan.Cols, plan.Rows, back)
		keeps = occ.OuterBleed(outerBleedPx)
	}

	for idx, src := range slots {
		if idx >= plan.Capacity() || src == "" {
			continue
		}
		row := idx / plan.Cols
		col := idx % plan.Cols
		if back {
			col = plan.Cols - 1 - col
		}
		x := plan.X0 + float64(col)*plan.CellW
		y := plan.Y0 + float64(plan.Rows-1-row)*plan.CellH

		if keeps != nil && keeps[row][col].Any() {
			if e.placeWithOuterBleed(cv, src, x, y, plan.CellW, plan.CellH, keeps[row][col]) {
				continue
			}
		}
		e.placeFitted(cv, e.prep.Inner(src), x, y, plan.CellW, plan.CellH)
	}
}

// PlaceBleedGrid draws one side of a bleed sheet; cells are full bleed
// canvases and the mirroring rule matches the standard grid.
func (e *Engine) PlaceBleedGrid(cv *Canvas, plan layout.GridPlan, slots []string, back bool) {
	for idx, src := range slots {
		if idx >= plan.Capacity() || src == "" {
			continue
		}
		row := idx / plan.Cols
		col := idx % plan.Cols
		if back {
			col = plan.Cols - 1 - col
		}
		x := plan.X0 + float64(col)*plan.CellW
		y := plan.Y0 + float64(plan.Rows-1-row)*plan.CellH
		e.placeFitted(cv, e.prep.Bleed(src), x, y, plan.CellW, plan.CellH)
	}
}

// PlaceGutterFold draws one gutter-fold sheet: fronts across the top
// row, backs directly below their front, rotated 180° in place. The
// rotation (not a mirror) is what registers the back behind the front
// when the sheet is folded along the horizontal gutter.
func (e *Engine) PlaceGutterFold(cv *Canvas, plan layout.GridPlan, pairs []models.CardPair) {
	yBottom := plan.Y0
	yTop := plan.Y0 + plan.CellH + plan.ExtraH

	for col := 0; col < plan.Cols && col < len(pairs); col++ {
		pair := pairs[col]
		x := plan.X0 + float64(col)*plan.CellW

		if pair.Front != "" {
			e.placeFitted(cv, e.prep.Inner(pair.Front), x, yTop, plan.CellW, plan.CellH)
		}
		if pair.Back != "" {
			path := e.prep.Inner(pair.Back)
			w, h := e.fitIntoBox(path, plan.CellW, plan.CellH)
			cv.ImageRotated180(path, x+(plan.CellW-w)/2, yBottom+(plan.CellH-h)/2, w, h)
		}
	}
}

// placeWithOuterBleed draws the bleed-extended raster so the inner
// content still lands exactly on the cell boundary while the fringe
// extends past it. Returns false when the source lacks bleed pixels or
// no uniform scale matches within tolerance; the caller then falls back
// to inner-only placement.
func (e *Engine) placeWithOuterBleed(cv *Canvas, src string, x, y, cellW, cellH float64, keep models.KeepPx) bool {
	path, err := e.prep.InnerWithBleed(src, keep)
	if err != nil {
		e.log.Debug("outer bleed unavailable for %s: %v", src, err)
		return false
	}

	scale, ok := e.pointsPerPixel(cellW, cellH)
	if !ok {
		e.log.Debug("outer bleed skipped for %s: cell %.2fx%.2fpt does not match geometry", src, cellW, cellH)
		return false
	}

	cv.Image(path,
		x-scale*float64(keep.Left),
		y-scale*float64(keep.Bottom),
		cellW+scale*float64(keep.Left+keep.Right),
		cellH+scale*float64(keep.Top+keep.Bottom))
	return true
}

// pointsPerPixel derives the uniform point-per-pixel factor mapping the
// inner pixel box onto the cell, accepting whichever axis' scale
// reproduces the other dimension within half a point.
func (e *Engine) pointsPerPixel(cellW, cellH float64) (float64, bool) {
	sx := cellW / float64(e.geom.InnerPxW)
	if math.Abs(float64(e.geom.InnerPxH)*sx-cellH) <= scaleTolerancePt {
		return sx, true
	}
	sy := cellH / float64(e.geom.InnerPxH)
	if math.Abs(float64(e.geom.InnerPxW)*sy-cellW) <= scaleTolerancePt {
		return sy, true
	}
	return 0, false
}

// placeFitted centers the raster in its cell, preserving aspect ratio.
func (e *Engine) placeFitted(cv *Canvas, path string, x, y, boxW, boxH float64) {
	w, h := e.fitIntoBox(path, boxW, boxH)
	cv.Image(path, x+(boxW-w)/2, y+(boxH-h)/2, w, h)
}

// fitIntoBox scales the raster's pixel size to the largest box-fitting
// rectangle; an unreadable header fills the whole box.
func (e *Engine) fitIntoBox(path string, boxW, boxH float64) (w, h float64) {
	pw, ph, err := prep.PixelSize(path)
	if err != nil || pw <= 0 || ph <= 0 {
		return boxW, boxH
	}
	scale := math.Min(boxW/float64(pw), boxH/float64(ph))
	return float64(pw) * scale, float64(ph) * scale
}
