package render

import (
	"github.com/pnpforge/cardsheets/internal/prep"
)

const (
	// Footer line placement.
	footerSideMarginPt = 20.0
	// FooterYPt is the default footer baseline height from the page
	// bottom.
	FooterYPt = 17.0
	// FooterYTightPt is used when the grid leaves almost no room below
	// it (standard layout on Letter).
	FooterYTightPt = 6.0

	copyrightMaxChars = 30

	// Logo constraints: placement scaling only, the file itself is
	// embedded untouched.
	logoMaxWPt    = 100.0
	logoMaxHPt    = 20.0
	logoGapToGrid = 5.0
)

// DrawFooter draws the bottom line: version string left-aligned, the
// copyright notice centered, and the page label right-aligned.
func DrawFooter(cv *Canvas, versionLabel, copyrightName, pageLabel string, y float64) {
	pageW, _ := cv.PageSize()

	if versionLabel != "" {
		cv.TextLeft(footerSideMarginPt, y, versionLabel)
	}
	if copyrightName != "" {
		name := copyrightName
		if runes := []rune(name); len(runes) > copyrightMaxChars {
			name = string(runes[:copyrightMaxChars])
		}
		cv.TextCentered(pageW/2, y, "© by "+name)
	}
	cv.TextRight(pageW-footerSideMarginPt, y, pageLabel)
}

// DrawLogo centers the logo above the grid, constrained to the maximum
// logo box and shrunk further if the space to the page top is tighter.
// A logo squeezed below 1pt of height is not drawn at all.
func DrawLogo(cv *Canvas, logoPath string, gridTopY float64) {
	pageW, pageH := cv.PageSize()

	w, h := logoDrawSize(logoPath)
	y := gridTopY + logoGapToGrid

	if avail := pageH - y; avail < h {
		if h > 0 {
			scale := avail / h
			w *= scale
			h *= scale
		}
		if h <= 1 {
			return
		}
	}

	cv.Image(logoPath, (pageW-w)/2, y, w, h)
}

// logoDrawSize scales the logo's pixel size down into the logo box;
// images already within the box keep their native size in points.
func logoDrawSize(path string) (w, h float64) {
	pw, ph, err := prep.PixelSize(path)
	if err != nil || pw <= 0 || ph <= 0 {
		return logoMaxWPt, logoMaxHPt
	}
	w, h = float64(pw), float64(ph)
	if w <= logoMaxWPt && h <= logoMaxHPt {
		return w, h
	}
	scale := logoMaxWPt / w
	if s := logoMaxHPt / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
