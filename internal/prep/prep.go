// Package prep turns source card images into cached rasters that are
// exactly the size the layouts expect: the trim (inner) pixel box, the
// full bleed canvas, or the inner box plus a retained outer-bleed
// fringe. Processing is best-effort; on any decode or encoding error
// the original file is used unchanged.
package prep

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

// CropMode selects the target canvas of a preprocessing run.
type CropMode int

const (
	// CropInner always ends at the exact inner pixel size, cropping
	// away any bleed border and upscaling undersized sources.
	CropInner CropMode = iota
	// CropBleed preserves the full bleed canvas; it only center-crops
	// oversized sources and never upscales (eligibility is checked
	// upstream).
	CropBleed
	// CropInnerKeep ends at inner size plus a retained bleed fringe on
	// selected edges; requires a bleed-capable source.
	CropInnerKeep
)

// Key identifies one cache entry. Identical keys return the same
// prepared file without recomputation for the lifetime of a run.
type Key struct {
	Source  string
	Quality models.Quality
	Mode    CropMode
	Keep    models.KeepPx
}

// Preprocessor prepares and caches card rasters for one run. The cache
// directory is wiped on construction so no stale entries survive
// between runs. Not safe for concurrent use; the pipeline is
// single-threaded.
type Preprocessor struct {
	cacheDir string
	geom     geometry.Geometry
	quality  models.Quality
	log      *logger.Logger
	cache    map[Key]string
}

// New creates the preprocessor and resets its on-disk cache.
func New(cacheDir string, geom geometry.Geometry, quality models.Quality, log *logger.Logger) (*Preprocessor, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			// Best effort; a leftover file only wastes disk space.
			_ = os.Remove(filepath.Join(cacheDir, entry.Name()))
		}
	}

	return &Preprocessor{
		cacheDir: cacheDir,
		geom:     geom,
		quality:  quality,
		log:      log,
		cache:    make(map[Key]string),
	}, nil
}

// Cleanup removes the cache directory.
func (p *Preprocessor) Cleanup() error {
	return os.RemoveAll(p.cacheDir)
}

// Inner returns a raster at exact inner (trim) size. Falls back to the
// unprocessed source on any error.
func (p *Preprocessor) Inner(src string) string {
	path, err := p.prepare(Key{Source: src, Quality: p.quality, Mode: CropInner})
	if err != nil {
		p.log.Debug("preprocess %s failed, using original: %v", filepath.Base(src), err)
		return src
	}
	return path
}

// Bleed returns a raster at exact bleed-canvas size. Falls back to the
// unprocessed source on any error.
func (p *Preprocessor) Bleed(src string) string {
	path, err := p.prepare(Key{Source: src, Quality: p.quality, Mode: CropBleed})
	if err != nil {
		p.log.Debug("preprocess %s failed, using original: %v", filepath.Base(src), err)
		return src
	}
	return path
}

// InnerWithBleed returns a raster at inner size extended by the kept
// bleed pixels on each retained edge. Unlike the other modes this
// surfaces errors: the placement engine needs to know when the source
// lacks bleed pixels so it can fall back to inner-only drawing.
func (p *Preprocessor) InnerWithBleed(src string, keep models.KeepPx) (string, error) {
	return p.prepare(Key{Source: src, Quality: p.quality, Mode: CropInnerKeep, Keep: keep})
}

func (p *Preprocessor) prepare(key Key) (string, error) {
	if cached, ok := p.cache[key]; ok {
		return cached, nil
	}

	out, err := p.process(key)
	if err != nil {
		if key.Mode != CropInnerKeep {
			// Remember the fallback too so repeated failures don't
			// re-decode the same broken file.
			p.cache[key] = key.Source
		}
		return "", err
	}

	p.cache[key] = out
	return out, nil
}

func (p *Preprocessor) process(key Key) (string, error) {
	src, err := imaging.Open(key.Source)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	im := flattenOnWhite(src)

	switch key.Mode {
	case CropInner:
		im = p.cropToInner(im)
	case CropBleed:
		im = p.cropToBleed(im)
	case CropInnerKeep:
		im, err = p.cropToInnerKeep(im, key.Keep)
		if err != nil {
			return "", err
		}
	}

	return p.encode(im, key)
}

// flattenOnWhite composites the image onto an opaque white background
// so transparency never shows through on paper.
func flattenOnWhite(im image.Image) *image.NRGBA {
	base := imaging.New(im.Bounds().Dx(), im.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(base, im, image.Pt(0, 0), 1.0)
}

// cropToInner runs the inner-mode ladder: fixed asymmetric border crop
// for exact-bleed sources, proportional border crop for larger exports,
// centered crop down to inner, and a stretch upscale for undersized
// input. Undersized art is deliberately upscaled instead of rejected.
func (p *Preprocessor) cropToInner(im *image.NRGBA) *image.NRGBA {
	g := p.geom
	w, h := im.Bounds().Dx(), im.Bounds().Dy()

	if w == g.BleedPxW && h == g.BleedPxH {
		im = imaging.Crop(im, image.Rect(
			geometry.BleedLowPx, geometry.BleedLowPx,
			w-geometry.BleedHighPx, h-geometry.BleedHighPx))
	} else if w >= g.BleedPxW && h >= g.BleedPxH {
		// Larger-than-bleed exports: remove the border proportionally,
		// then let the centered crop below enforce the exact size.
		left := roundFrac(w, geometry.BleedLowPx, g.BleedPxW)
		top := roundFrac(h, geometry.BleedLowPx, g.BleedPxH)
		right := w - roundFrac(w, geometry.BleedHighPx, g.BleedPxW)
		bottom := h - roundFrac(h, geometry.BleedHighPx, g.BleedPxH)
		im = imaging.Crop(im, image.Rect(left, top, right, bottom))
	}

	w, h = im.Bounds().Dx(), im.Bounds().Dy()
	if w >= g.InnerPxW && h >= g.InnerPxH && (w != g.InnerPxW || h != g.InnerPxH) {
		im = imaging.CropCenter(im, g.InnerPxW, g.InnerPxH)
	}

	w, h = im.Bounds().Dx(), im.Bounds().Dy()
	if w < g.InnerPxW || h < g.InnerPxH {
		im = imaging.Resize(im, g.InnerPxW, g.InnerPxH, imaging.Lanczos)
	}

	return im
}

// cropToBleed keeps the bleed canvas: centered crop for oversized
// sources and a ratio fix along the axis in excess. Never upscales.
func (p *Preprocessor) cropToBleed(im *image.NRGBA) *image.NRGBA {
	g := p.geom
	w, h := im.Bounds().Dx(), im.Bounds().Dy()

	if w >= g.BleedPxW && h >= g.BleedPxH && (w != g.BleedPxW || h != g.BleedPxH) {
		im = imaging.CropCenter(im, g.BleedPxW, g.BleedPxH)
	}

	w, h = im.Bounds().Dx(), im.Bounds().Dy()
	if w*g.BleedPxH != h*g.BleedPxW {
		targetRatio := float64(g.BleedPxW) / float64(g.BleedPxH)
		currentRatio := targetRatio
		if h > 0 {
			currentRatio = float64(w) / float64(h)
		}
		if currentRatio > targetRatio {
			newW := int(float64(h)*targetRatio + 0.5)
			im = imaging.CropCenter(im, newW, h)
		} else {
			newH := int(float64(w)/targetRatio + 0.5)
			im = imaging.CropCenter(im, w, newH)
		}
	}

	return im
}

// cropToInnerKeep normalizes to the exact bleed canvas and then crops
// down to inner size plus the retained fringe. Sources without full
// bleed pixels are rejected so the caller can fall back to inner-only.
func (p *Preprocessor) cropToInnerKeep(im *image.NRGBA, keep models.KeepPx) (*image.NRGBA, error) {
	g := p.geom
	if m := maxKeep(keep); m > geometry.BleedLowPx {
		// The narrow side of the border only has BleedLowPx pixels to
		// give; a larger keep would clip the crop rect and distort the
		// placement scale.
		return nil, fmt.Errorf("keep of %dpx exceeds the %dpx bleed border", m, geometry.BleedLowPx)
	}
	w, h := im.Bounds().Dx(), im.Bounds().Dy()
	if w < g.BleedPxW || h < g.BleedPxH {
		return nil, fmt.Errorf("source is %dx%d, outer bleed needs at least %dx%d", w, h, g.BleedPxW, g.BleedPxH)
	}

	im = p.cropToBleed(im)
	w, h = im.Bounds().Dx(), im.Bounds().Dy()
	if w != g.BleedPxW || h != g.BleedPxH {
		return nil, fmt.Errorf("bleed normalization ended at %dx%d, want %dx%d", w, h, g.BleedPxW, g.BleedPxH)
	}

	rect := image.Rect(
		geometry.BleedLowPx-keep.Left,
		geometry.BleedLowPx-keep.Top,
		geometry.BleedLowPx+g.InnerPxW+keep.Right,
		geometry.BleedLowPx+g.InnerPxH+keep.Bottom,
	)
	return imaging.Crop(im, rect), nil
}

// encode writes the prepared raster into the cache: PNG for the
// lossless preset, otherwise a shrink-only resample to the DPI-derived
// pixel box followed by JPEG at the preset's quality factor.
func (p *Preprocessor) encode(im *image.NRGBA, key Key) (string, error) {
	preset := key.Quality.Preset()

	ext := ".jpg"
	if preset.Lossless {
		ext = ".png"
	}
	out := filepath.Join(p.cacheDir, cacheFileName(key, ext))
	if _, err := os.Stat(out); err == nil {
		return out, nil
	}

	if preset.Lossless {
		if err := imaging.Save(im, out); err != nil {
			return "", fmt.Errorf("failed to save lossless image: %w", err)
		}
		return out, nil
	}

	boxW, boxH := p.targetBoxIn(key)
	targetW := int(boxW*float64(preset.DPI) + 0.5)
	targetH := int(boxH*float64(preset.DPI) + 0.5)
	if im.Bounds().Dx() > targetW || im.Bounds().Dy() > targetH {
		// Fit never enlarges, matching the shrink-only contract.
		im = imaging.Fit(im, targetW, targetH, imaging.Lanczos)
	}

	if err := imaging.Save(im, out, imaging.JPEGQuality(preset.JPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to save jpeg image: %w", err)
	}
	return out, nil
}

// targetBoxIn returns the physical box the raster will occupy on the
// page, in inches, for DPI-based downsampling.
func (p *Preprocessor) targetBoxIn(key Key) (w, h float64) {
	g := p.geom
	switch key.Mode {
	case CropBleed:
		return g.BleedBoxIn()
	case CropInnerKeep:
		w = float64(g.InnerPxW+key.Keep.Left+key.Keep.Right) / geometry.TemplateDPI
		h = float64(g.InnerPxH+key.Keep.Top+key.Keep.Bottom) / geometry.TemplateDPI
		return w, h
	default:
		return g.InnerBoxIn()
	}
}

func cacheFileName(key Key, ext string) string {
	abs, err := filepath.Abs(key.Source)
	if err != nil {
		abs = key.Source
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\n%s\n%d\n%d,%d,%d,%d",
		abs, key.Quality, key.Mode, key.Keep.Left, key.Keep.Right, key.Keep.Top, key.Keep.Bottom)))
	digest := hex.EncodeToString(sum[:])[:12]

	stem := strings.TrimSuffix(filepath.Base(key.Source), filepath.Ext(key.Source))
	return fmt.Sprintf("%s_%s_%s%s", stem, key.Quality, digest, ext)
}

func roundFrac(size, num, den int) int {
	return int(float64(size)*float64(num)/float64(den) + 0.5)
}

func maxKeep(k models.KeepPx) int {
	m := k.Left
	for _, v := range []int{k.Right, k.Top, k.Bottom} {
		if v > m {
			m = v
		}
	}
	return m
}
