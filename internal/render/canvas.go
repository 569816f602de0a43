// Package render draws card sheets onto a PDF document: image
// placement with the layout's mirror/rotation transforms, cut marks at
// derived cut-line positions, and the footer/logo decorations.
package render

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/pnpforge/cardsheets/pkg/models"
)

// DocMeta is the document metadata written into the PDF info
// dictionary.
type DocMeta struct {
	Title   string
	Author  string
	Creator string
}

// Canvas wraps an fpdf document and exposes drawing operations in page
// space with a bottom-left origin, matching the grid math. fpdf itself
// works top-down; the wrapper owns the Y flip so no layout code ever
// sees flipped coordinates.
type Canvas struct {
	pdf   *fpdf.Fpdf
	pageW float64
	pageH float64
	// translate maps UTF-8 strings into the cp1252 encoding of the core
	// fonts; without it "©" renders as two mojibake glyphs.
	translate func(string) string
}

// NewDocument creates a single-size PDF document in point units.
func NewDocument(paper models.PaperSize, meta DocMeta) *Canvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: paper.Width, Ht: paper.Height},
	})
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetSubject("", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 9)

	return &Canvas{
		pdf:       pdf,
		pageW:     paper.Width,
		pageH:     paper.Height,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// AddPage starts a new page.
func (c *Canvas) AddPage() {
	c.pdf.AddPage()
}

// PageSize returns the page dimensions in points.
func (c *Canvas) PageSize() (w, h float64) {
	return c.pageW, c.pageH
}

// PageCount returns the number of pages added so far.
func (c *Canvas) PageCount() int {
	return c.pdf.PageCount()
}

// Image draws a raster stretched to the box whose bottom-left corner is
// (x, y).
func (c *Canvas) Image(path string, x, y, w, h float64) {
	opts := imageOptions(path)
	c.pdf.RegisterImageOptions(path, opts)
	c.pdf.ImageOptions(path, x, c.pageH-y-h, w, h, false, opts, 0, "")
}

// ImageRotated180 draws the raster rotated half a turn in place, the
// transform that makes a gutter-fold back line up behind its front
// after folding.
func (c *Canvas) ImageRotated180(path string, x, y, w, h float64) {
	cx := x + w/2
	cy := c.pageH - y - h/2
	c.pdf.TransformBegin()
	c.pdf.TransformRotate(180, cx, cy)
	c.Image(path, x, y, w, h)
	c.pdf.TransformEnd()
}

// Line draws a straight segment between two page-space points using the
// current stroke settings.
func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, c.pageH-y1, x2, c.pageH-y2)
}

// SetStroke sets the line width for subsequent segments.
func (c *Canvas) SetStroke(width float64) {
	c.pdf.SetLineWidth(width)
	c.pdf.SetDrawColor(0, 0, 0)
}

// DashedLine draws a segment with the given on/off dash pattern and
// restores solid stroking afterwards.
func (c *Canvas) DashedLine(x1, y1, x2, y2, on, off float64) {
	c.pdf.SetDashPattern([]float64{on, off}, 0)
	c.Line(x1, y1, x2, y2)
	c.pdf.SetDashPattern([]float64{}, 0)
}

// TextLeft draws a string with its left edge at x and baseline at y.
func (c *Canvas) TextLeft(x, y float64, s string) {
	c.pdf.Text(x, c.pageH-y, c.translate(s))
}

// TextCentered draws a string centered on x.
func (c *Canvas) TextCentered(x, y float64, s string) {
	t := c.translate(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(t)/2, c.pageH-y, t)
}

// TextRight draws a string with its right edge at x.
func (c *Canvas) TextRight(x, y float64, s string) {
	t := c.translate(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(t), c.pageH-y, t)
}

// Err returns the document's sticky error, if any.
func (c *Canvas) Err() error {
	if c.pdf.Err() {
		return fmt.Errorf("pdf error: %s", c.pdf.Error())
	}
	return nil
}

// Save finalizes the document and writes it to disk.
func (c *Canvas) Save(path string) error {
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func imageOptions(path string) fpdf.ImageOptions {
	var imageType string
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".png"):
		imageType = "PNG"
	case strings.HasSuffix(strings.ToLower(path), ".jpg"),
		strings.HasSuffix(strings.ToLower(path), ".jpeg"):
		imageType = "JPG"
	}
	return fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
}
