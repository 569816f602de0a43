// Package generator drives a full run: card discovery, deck analysis,
// layout narrowing, and one document per requested layout/paper-size
// combination.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pnpforge/cardsheets/internal/cards"
	"github.com/pnpforge/cardsheets/internal/config"
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/layout"
	"github.com/pnpforge/cardsheets/internal/prep"
	"github.com/pnpforge/cardsheets/internal/render"
	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/models"
)

const pdfCreator = "Created by cardsheets"

// Options are the validated run inputs, resolved from config and flags
// by the caller.
type Options struct {
	CardDir       string
	OutputDir     string
	OutputBase    string
	Layouts       []models.LayoutFamily
	Papers        []models.PaperSize
	Quality       models.Quality
	LogoPath      string
	CopyrightName string
	VersionLabel  string
	OuterBleedPx  int
	StandardMarks render.MarkStyle
	BleedMarks    render.MarkStyle
}

// OptionsFromConfig resolves the raw config strings into typed options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	layouts, err := models.ParseLayouts(cfg.Layouts)
	if err != nil {
		return Options{}, err
	}
	papers, err := models.ParsePaperSizes(cfg.PaperSizes)
	if err != nil {
		return Options{}, err
	}
	quality, err := models.ParseQuality(cfg.Quality)
	if err != nil {
		return Options{}, err
	}

	return Options{
		CardDir:       cfg.CardDir,
		OutputBase:    cfg.OutputBase,
		Layouts:       layouts,
		Papers:        papers,
		Quality:       quality,
		LogoPath:      cfg.LogoPath,
		CopyrightName: cfg.CopyrightName,
		VersionLabel:  cfg.VersionLabel,
		OuterBleedPx:  cfg.OuterBleedPx,
		StandardMarks: render.MarkStyle{LengthPt: cfg.CutMarks.LengthPtStandard, WidthPt: cfg.CutMarks.WidthPtStandard},
		BleedMarks:    render.MarkStyle{LengthPt: cfg.CutMarks.LengthPtBleed, WidthPt: cfg.CutMarks.WidthPtBleed},
	}, nil
}

// Generator assembles sheets into documents for one run.
type Generator struct {
	opts    Options
	geom    geometry.Geometry
	pre     *prep.Preprocessor
	engine  *render.Engine
	scanner *cards.Scanner
	log     *logger.Logger

	// Progress, when set, is called after each finished document.
	Progress func(done, total int)
}

func New(opts Options, geom geometry.Geometry, pre *prep.Preprocessor, log *logger.Logger) *Generator {
	return &Generator{
		opts:    opts,
		geom:    geom,
		pre:     pre,
		engine:  render.NewEngine(geom, pre, log),
		scanner: cards.NewScanner(log),
		log:     log,
	}
}

// Run executes the whole pipeline. Discovery failure (no cards) is the
// only globally fatal error; per-combination failures are recorded in
// the report and do not stop the remaining combinations.
func (g *Generator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartTime: time.Now()}

	pairs, err := g.scanner.FindPairs(ctx, g.opts.CardDir)
	if err != nil {
		return nil, err
	}
	report.Pairs = len(pairs)

	analysis, err := cards.Analyze(ctx, pairs, g.geom)
	if err != nil {
		return nil, err
	}
	if len(analysis.TooSmall) > 0 {
		names := make([]string, len(analysis.TooSmall))
		for i, p := range analysis.TooSmall {
			names[i] = filepath.Base(p)
		}
		report.Warnf("%d card image(s) smaller than %dx%d px will be upscaled: %s",
			len(names), g.geom.InnerPxW, g.geom.InnerPxH, strings.Join(names, ", "))
	}

	layouts := g.narrowLayouts(report, analysis, pairs)

	deck := cards.Expand(pairs)
	report.Cards = len(deck)
	hasBacks := cards.HasBacks(pairs)

	logoPath := cards.FindLogo(g.opts.LogoPath, g.opts.CardDir)
	if g.opts.LogoPath != "" && logoPath == "" {
		report.Warnf("logo path %s is not a usable image, continuing without logo", g.opts.LogoPath)
	}

	total := len(layouts) * len(g.opts.Papers)
	multiPaper := len(g.opts.Papers) > 1
	done := 0
	for _, fam := range layouts {
		for _, paper := range g.opts.Papers {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			default:
			}

			result := g.generateDocument(fam, paper, multiPaper, deck, hasBacks, logoPath)
			if result.Err != nil {
				g.log.Warn("skipping %s on %s: %v", fam, paper.Name, result.Err)
			} else {
				g.log.Info("created %s (%d page(s))", result.Path, result.Pages)
			}
			report.Documents = append(report.Documents, result)

			done++
			if g.Progress != nil {
				g.Progress(done, total)
			}
		}
	}

	for _, w := range report.Warnings {
		g.log.Warn("%s", w)
	}

	report.EndTime = time.Now()
	return report, nil
}

// narrowLayouts drops requested layouts the deck cannot satisfy and
// records the reason: the bleed layout needs every pair at full bleed
// size, the gutter-fold needs at least one back in the deck.
func (g *Generator) narrowLayouts(report *RunReport, analysis cards.Analysis, pairs []models.CardPair) []models.LayoutFamily {
	var out []models.LayoutFamily
	for _, fam := range g.opts.Layouts {
		switch {
		case fam == models.LayoutBleed && !analysis.AllBleedCapable():
			report.Warnf("skipping bleed layout: %d of %d pair(s) lack bleed-size images (min %dx%d px)",
				analysis.TotalPairs-analysis.BleedCapablePairs, analysis.TotalPairs, g.geom.BleedPxW, g.geom.BleedPxH)
		case fam == models.LayoutGutterFold && !cards.HasBacks(pairs):
			report.Warnf("skipping gutter-fold layout: the deck has no back images to fold against")
		default:
			out = append(out, fam)
		}
	}
	return out
}

func (g *Generator) generateDocument(fam models.LayoutFamily, paper models.PaperSize, multiPaper bool, deck []models.CardPair, hasBacks bool, logoPath string) DocumentResult {
	result := DocumentResult{Layout: fam, Paper: paper}

	margins := layout.DefaultMargins()
	reserve := layout.DefaultReserve()

	var (
		page models.PaperSize
		plan layout.GridPlan
	)
	switch fam {
	case models.LayoutStandard:
		page = paper
		plan = layout.Plan(page.Width, page.Height, margins, g.geom.TrimPtW, g.geom.TrimPtH, reserve)
	case models.LayoutBleed:
		page = paper.Landscape()
		cellW, cellH := g.geom.BleedCellPt()
		plan = layout.Plan(page.Width, page.Height, margins, cellW, cellH, reserve)
	case models.LayoutGutterFold:
		var err error
		page, plan, err = g.planGutterFold(paper, margins, reserve)
		if err != nil {
			result.Err = err
			return result
		}
	}

	result.Path = g.outputPath(fam, plan, paper, multiPaper)
	title := strings.TrimSuffix(filepath.Base(result.Path), ".pdf")
	cv := render.NewDocument(page, render.DocMeta{
		Title:   title,
		Author:  g.opts.CopyrightName,
		Creator: pdfCreator,
	})

	footerY := render.FooterYPt
	if fam == models.LayoutStandard && paper.Name == models.PaperLetter.Name {
		// The 3x3 poker grid nearly fills Letter portrait; tuck the
		// footer under the grid.
		footerY = render.FooterYTightPt
	}

	switch fam {
	case models.LayoutStandard, models.LayoutBleed:
		g.renderDuplexSheets(cv, fam, plan, deck, hasBacks, logoPath, footerY)
	case models.LayoutGutterFold:
		g.renderGutterFoldSheets(cv, plan, deck, logoPath, footerY)
	}

	if err := cv.Err(); err != nil {
		result.Err = err
		return result
	}
	result.Pages = cv.PageCount()
	if err := cv.Save(result.Path); err != nil {
		result.Err = err
	}
	return result
}

// renderDuplexSheets emits the alternating front/back pages of the
// standard and bleed grids. Back pages are only produced when the deck
// has any back at all.
func (g *Generator) renderDuplexSheets(cv *render.Canvas, fam models.LayoutFamily, plan layout.GridPlan, deck []models.CardPair, hasBacks bool, logoPath string, footerY float64) {
	perPage := plan.Capacity()
	sheetNo := 0

	for start := 0; start < len(deck); start += perPage {
		chunk := deck[start:min(start+perPage, len(deck))]
		sheetNo++

		fronts := make([]string, perPage)
		backs := make([]string, perPage)
		for i, pair := range chunk {
			fronts[i] = pair.Front
			backs[i] = pair.Back
		}

		cv.AddPage()
		if fam == models.LayoutBleed {
			g.engine.PlaceBleedGrid(cv, plan, fronts, false)
			render.DrawBleedMarks(cv, plan, g.geom, g.opts.BleedMarks)
		} else {
			g.engine.PlaceInnerGrid(cv, plan, fronts, false, g.opts.OuterBleedPx)
			render.DrawStandardMarks(cv, plan, g.opts.StandardMarks)
		}
		g.decorate(cv, plan, logoPath, fmt.Sprintf("%da", sheetNo), footerY)

		if !hasBacks {
			continue
		}

		cv.AddPage()
		if fam == models.LayoutBleed {
			g.engine.PlaceBleedGrid(cv, plan, backs, true)
			render.DrawBleedMarks(cv, plan, g.geom, g.opts.BleedMarks)
		} else {
			g.engine.PlaceInnerGrid(cv, plan, backs, true, g.opts.OuterBleedPx)
			render.DrawStandardMarks(cv, plan, g.opts.StandardMarks)
		}
		g.decorate(cv, plan, logoPath, fmt.Sprintf("%db", sheetNo), footerY)
	}
}

// renderGutterFoldSheets emits single fold sheets, one chunk of columns
// per page.
func (g *Generator) renderGutterFoldSheets(cv *render.Canvas, plan layout.GridPlan, deck []models.CardPair, logoPath string, footerY float64) {
	perPage := plan.Cols
	sheetNo := 0

	for start := 0; start < len(deck); start += perPage {
		chunk := deck[start:min(start+perPage, len(deck))]
		sheetNo++

		cv.AddPage()
		g.engine.PlaceGutterFold(cv, plan, chunk)
		render.DrawGutterFoldMarks(cv, plan, g.opts.StandardMarks)
		g.decorate(cv, plan, logoPath, fmt.Sprintf("%d", sheetNo), footerY)
	}
}

func (g *Generator) decorate(cv *render.Canvas, plan layout.GridPlan, logoPath, pageLabel string, footerY float64) {
	if logoPath != "" {
		render.DrawLogo(cv, logoPath, plan.TopY())
	}
	render.DrawFooter(cv, g.opts.VersionLabel, g.opts.CopyrightName, pageLabel, footerY)
}

// planGutterFold tries landscape first, then portrait. When neither
// orientation has room for two card rows plus the gutter, the reported
// failure cites the orientation that came closer.
func (g *Generator) planGutterFold(paper models.PaperSize, margins layout.Margins, reserve layout.Reserve) (models.PaperSize, layout.GridPlan, error) {
	landscape := paper.Landscape()
	plan, errL := layout.PlanGutterFold(landscape.Width, landscape.Height, margins, g.geom.TrimPtW, g.geom.TrimPtH, reserve)
	if errL == nil {
		return landscape, plan, nil
	}

	portrait := paper
	plan, errP := layout.PlanGutterFold(portrait.Width, portrait.Height, margins, g.geom.TrimPtW, g.geom.TrimPtH, reserve)
	if errP == nil {
		return portrait, plan, nil
	}

	spaceL, okL := errL.(*layout.SpaceError)
	spaceP, okP := errP.(*layout.SpaceError)
	if okL && okP && spaceP.AvailablePt > spaceL.AvailablePt {
		return paper, layout.GridPlan{}, spaceP
	}
	return paper, layout.GridPlan{}, errL
}

// outputPath derives the document filename: base + layout suffix +
// paper suffix (only when more than one paper size is requested).
func (g *Generator) outputPath(fam models.LayoutFamily, plan layout.GridPlan, paper models.PaperSize, multiPaper bool) string {
	var layoutSuffix string
	if fam == models.LayoutGutterFold {
		layoutSuffix = "_gutterfold"
	} else {
		layoutSuffix = fmt.Sprintf("_%dcards", plan.Capacity())
	}

	name := g.opts.OutputBase + layoutSuffix
	if multiPaper {
		name += "_" + paper.Name
	}
	return filepath.Join(g.opts.OutputDir, name+".pdf")
}
