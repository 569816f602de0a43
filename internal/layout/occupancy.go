package layout

import (
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// Occupancy marks which grid cells of one sheet side hold a real card.
// Cell coordinates are (row, col) with row 0 the visually topmost row;
// back sides record mirrored column indices so the mask describes the
// page as printed.
type Occupancy struct {
	Cols  int
	Rows  int
	cells [][]bool
}

// BuildOccupancy maps the sheet's image slots (row-major, padded to
// cols*rows, empty string = padding) onto grid coordinates. When back
// is true the column index is mirrored before recording, matching the
// column-mirrored placement of back sheets.
func BuildOccupancy(slots []string, cols, rows int, back bool) Occupancy {
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
	}

	for idx, slot := range slots {
		if idx >= cols*rows || slot == "" {
			continue
		}
		row := idx / cols
		col := idx % cols
		if back {
			col = cols - 1 - col
		}
		cells[row][col] = true
	}

	return Occupancy{Cols: cols, Rows: rows, cells: cells}
}

// Occupied reports whether the cell holds a real card.
func (o Occupancy) Occupied(row, col int) bool {
	return row >= 0 && row < o.Rows && col >= 0 && col < o.Cols && o.cells[row][col]
}

// OuterBleed decides, per occupied cell, on which edges the thin outer
// bleed fringe is retained. Bleed between adjacent cut cards would show
// as a printing defect, so an edge keeps its fringe only at the true
// silhouette of the occupied region:
//
//   - top: only in the first occupied row overall
//   - bottom: in the last occupied row, or when the cell directly below
//     is unoccupied
//   - left/right: only at the first/last occupied column within the
//     cell's own row (row-local on purpose: a partial last row shows
//     bleed at its real visual edges, not the grid's nominal edges)
//
// amount is the retained pixel count; zero disables the feature and
// yields an all-zero matrix. Amounts above the narrow bleed border are
// clamped to it, since the source has no more pixels to give there.
func (o Occupancy) OuterBleed(amount int) [][]models.KeepPx {
	keeps := make([][]models.KeepPx, o.Rows)
	for r := range keeps {
		keeps[r] = make([]models.KeepPx, o.Cols)
	}
	if amount <= 0 {
		return keeps
	}
	if amount > geometry.BleedLowPx {
		amount = geometry.BleedLowPx
	}

	firstRow, lastRow := -1, -1
	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			if o.cells[r][c] {
				if firstRow == -1 {
					firstRow = r
				}
				lastRow = r
				break
			}
		}
	}

	for r := 0; r < o.Rows; r++ {
		firstCol, lastCol := -1, -1
		for c := 0; c < o.Cols; c++ {
			if o.cells[r][c] {
				if firstCol == -1 {
					firstCol = c
				}
				lastCol = c
			}
		}

		for c := 0; c < o.Cols; c++ {
			if !o.cells[r][c] {
				continue
			}
			var k models.KeepPx
			if r == firstRow {
				k.Top = amount
			}
			if r == lastRow || !o.Occupied(r+1, c) {
				k.Bottom = amount
			}
			if c == firstCol {
				k.Left = amount
			}
			if c == lastCol {
				k.Right = amount
			}
			keeps[r][c] = k
		}
	}

	return keeps
}
