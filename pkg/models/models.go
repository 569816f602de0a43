package models

import (
	"fmt"
	"strings"
)

// LayoutFamily identifies one of the supported sheet layouts. Legacy
// textual aliases are normalized by ParseLayouts; the rest of the code
// only ever branches on the canonical values.
type LayoutFamily int

const (
	// LayoutStandard is the portrait inner-only grid with cut crosses.
	LayoutStandard LayoutFamily = iota
	// LayoutBleed is the landscape grid of bleed-canvas cells with
	// outer-only trim marks.
	LayoutBleed
	// LayoutGutterFold is the two-row fold layout: fronts on top,
	// backs below, folded along a horizontal gutter.
	LayoutGutterFold
)

func (f LayoutFamily) String() string {
	switch f {
	case LayoutStandard:
		return "standard"
	case LayoutBleed:
		return "bleed"
	case LayoutGutterFold:
		return "gutterfold"
	}
	return fmt.Sprintf("LayoutFamily(%d)", int(f))
}

// ParseLayouts normalizes a list of layout selectors into canonical
// families. Accepts the legacy grid names ("3x3", "2x3") as aliases and
// "all"/"both" as the full set. Duplicates are dropped, order preserved.
func ParseLayouts(keys []string) ([]LayoutFamily, error) {
	all := []LayoutFamily{LayoutStandard, LayoutBleed, LayoutGutterFold}
	if len(keys) == 0 {
		return all, nil
	}

	var out []LayoutFamily
	seen := make(map[LayoutFamily]bool)
	add := func(f LayoutFamily) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	for _, key := range keys {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "standard", "3x3", "3", "3x", "grid":
			add(LayoutStandard)
		case "bleed", "2x3", "2", "2x":
			add(LayoutBleed)
		case "gutterfold", "gutter-fold", "gf", "g":
			add(LayoutGutterFold)
		case "all", "both", "b", "":
			for _, f := range all {
				add(f)
			}
		default:
			return nil, fmt.Errorf("unknown layout %q (expected standard/3x3, bleed/2x3, gutterfold or all)", key)
		}
	}
	return out, nil
}

// PaperSize is a physical page size in PDF points.
type PaperSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	PaperA4     = PaperSize{Name: "A4", Width: 595.28, Height: 841.89}
	PaperLetter = PaperSize{Name: "Letter", Width: 612.0, Height: 792.0}
)

// Landscape returns the size rotated to landscape orientation.
func (p PaperSize) Landscape() PaperSize {
	if p.Width >= p.Height {
		return p
	}
	return PaperSize{Name: p.Name, Width: p.Height, Height: p.Width}
}

// ParsePaperSizes maps selectors to paper sizes; "both" (or an empty
// list) selects A4 and Letter.
func ParsePaperSizes(keys []string) ([]PaperSize, error) {
	if len(keys) == 0 {
		return []PaperSize{PaperA4, PaperLetter}, nil
	}

	var out []PaperSize
	seen := make(map[string]bool)
	add := func(p PaperSize) {
		if !seen[p.Name] {
			seen[p.Name] = true
			out = append(out, p)
		}
	}

	for _, key := range keys {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "a4", "a":
			add(PaperA4)
		case "letter", "l":
			add(PaperLetter)
		case "both", "b", "all", "":
			add(PaperA4)
			add(PaperLetter)
		default:
			return nil, fmt.Errorf("unknown paper size %q (expected A4, Letter or both)", key)
		}
	}
	return out, nil
}

// Quality selects the preprocessing preset for card images.
type Quality int

const (
	QualityLossless Quality = iota
	QualityHigh
	QualityMedium
	QualityLow
)

func (q Quality) String() string {
	switch q {
	case QualityLossless:
		return "lossless"
	case QualityHigh:
		return "high"
	case QualityMedium:
		return "medium"
	case QualityLow:
		return "low"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Preset holds the DPI target and, for lossy presets, the JPEG quality
// factor of a Quality value.
type Preset struct {
	DPI         int
	JPEGQuality int
	Lossless    bool
}

// Preset returns the encoding parameters for the quality level.
func (q Quality) Preset() Preset {
	switch q {
	case QualityLossless:
		return Preset{DPI: 300, Lossless: true}
	case QualityMedium:
		return Preset{DPI: 200, JPEGQuality: 80}
	case QualityLow:
		return Preset{DPI: 120, JPEGQuality: 65}
	default:
		return Preset{DPI: 300, JPEGQuality: 90}
	}
}

// ParseQuality normalizes a quality selector; the empty string is the
// default (high).
func ParseQuality(key string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "lossless", "loss", "0":
		return QualityLossless, nil
	case "high", "h", "1", "":
		return QualityHigh, nil
	case "medium", "med", "m", "2":
		return QualityMedium, nil
	case "low", "lo", "3":
		return QualityLow, nil
	default:
		return QualityHigh, fmt.Errorf("unknown quality %q (expected lossless, high, medium or low)", key)
	}
}

// CardPair is one logical card: a display name, optional front and back
// image paths and a replication count. Built once from folder contents
// and immutable afterwards.
type CardPair struct {
	Name  string
	Front string
	Back  string
	Count int
}

// Copies returns the replication count clamped to a minimum of 1.
func (p CardPair) Copies() int {
	if p.Count < 1 {
		return 1
	}
	return p.Count
}

// KeepPx is the per-cell outer-bleed decision: how many bleed pixels to
// retain on each edge (zero suppresses the edge).
type KeepPx struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Any reports whether at least one edge retains bleed.
func (k KeepPx) Any() bool {
	return k.Left > 0 || k.Right > 0 || k.Top > 0 || k.Bottom > 0
}
