// Package geometry derives the measurement systems used by every other
// component from a named physical card format: point-based trim size for
// page placement, pixel-based inner size at the fixed template DPI, and
// the pixel-based bleed canvas around it.
package geometry

import (
	"fmt"
	"math"
	"strings"
)

const (
	// TemplateDPI is the fixed pixel-per-inch reference used to
	// translate physical card sizes into pixel geometry.
	TemplateDPI = 300

	// The bleed border is 1/8 inch per side at template DPI, split
	// asymmetrically: 37px on the left/top edge, 38px on the
	// right/bottom edge. The split must stay exactly as-is; the crop
	// math in the preprocessor and the trim-line fractions of the
	// bleed layout depend on it.
	BleedLowPx  = 37
	BleedHighPx = 38

	mmPerInch = 25.4
	ptPerInch = 72.0
)

// Format is a named physical card size in millimeters. Immutable once
// selected; one format is active per run.
type Format struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var formats = []Format{
	{Name: "poker", WidthMM: 63.5, HeightMM: 88.9},
	{Name: "bridge", WidthMM: 57.15, HeightMM: 88.9},
	{Name: "mini", WidthMM: 44.45, HeightMM: 63.5},
	{Name: "tarot", WidthMM: 69.85, HeightMM: 120.65},
}

// DefaultFormat is the poker format (2.5" x 3.5").
func DefaultFormat() Format {
	return formats[0]
}

// FormatByName looks up a registered card format. The empty string
// selects the default.
func FormatByName(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultFormat(), nil
	}
	for _, f := range formats {
		if f.Name == key {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("unknown card format %q (known: %s)", name, formatNames())
}

func formatNames() string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

// Geometry holds every derived measurement of a card format. It is a
// value: resolve once per run and pass it explicitly to all consumers.
type Geometry struct {
	Format Format

	// Trim size in PDF points.
	TrimPtW float64
	TrimPtH float64

	// Trim size in pixels at TemplateDPI.
	InnerPxW int
	InnerPxH int

	// Inner size plus the fixed bleed border on each side.
	BleedPxW int
	BleedPxH int
}

// Resolve computes the geometry of a card format. Pure; zero or
// negative dimensions are a caller contract violation.
func Resolve(f Format) Geometry {
	innerW := pxFromMM(f.WidthMM)
	innerH := pxFromMM(f.HeightMM)
	return Geometry{
		Format:   f,
		TrimPtW:  f.WidthMM / mmPerInch * ptPerInch,
		TrimPtH:  f.HeightMM / mmPerInch * ptPerInch,
		InnerPxW: innerW,
		InnerPxH: innerH,
		BleedPxW: innerW + BleedLowPx + BleedHighPx,
		BleedPxH: innerH + BleedLowPx + BleedHighPx,
	}
}

func pxFromMM(mm float64) int {
	return int(math.Round(mm / mmPerInch * TemplateDPI))
}

// InnerBoxIn returns the trim box in inches, derived from the pixel
// size so that preprocessing targets and placement agree exactly.
func (g Geometry) InnerBoxIn() (w, h float64) {
	return float64(g.InnerPxW) / TemplateDPI, float64(g.InnerPxH) / TemplateDPI
}

// BleedBoxIn returns the bleed canvas in inches.
func (g Geometry) BleedBoxIn() (w, h float64) {
	return float64(g.BleedPxW) / TemplateDPI, float64(g.BleedPxH) / TemplateDPI
}

// BleedCellPt returns the point size of one bleed-layout cell: the trim
// size scaled up by the bleed/inner pixel ratio per axis.
func (g Geometry) BleedCellPt() (w, h float64) {
	w = g.TrimPtW * float64(g.BleedPxW) / float64(g.InnerPxW)
	h = g.TrimPtH * float64(g.BleedPxH) / float64(g.InnerPxH)
	return w, h
}

// TrimFractionsX returns the horizontal trim-line positions inside one
// bleed cell as fractions of the cell width: the left cut sits
// BleedLowPx from the left edge, the right cut BleedLowPx+InnerPxW.
func (g Geometry) TrimFractionsX() (left, right float64) {
	left = float64(BleedLowPx) / float64(g.BleedPxW)
	right = float64(BleedLowPx+g.InnerPxW) / float64(g.BleedPxW)
	return left, right
}

// TrimFractionsY returns the vertical trim-line positions inside one
// bleed cell as fractions of the cell height, measured from the bottom
// edge (the bottom border is the high side of the asymmetric split).
func (g Geometry) TrimFractionsY() (bottom, top float64) {
	bottom = float64(BleedHighPx) / float64(g.BleedPxH)
	top = float64(BleedHighPx+g.InnerPxH) / float64(g.BleedPxH)
	return bottom, top
}
