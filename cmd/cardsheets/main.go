package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/pnpforge/cardsheets/internal/config"
	"github.com/pnpforge/cardsheets/internal/generator"
	"github.com/pnpforge/cardsheets/internal/geometry"
	"github.com/pnpforge/cardsheets/internal/prep"
	"github.com/pnpforge/cardsheets/pkg/logger"
	"github.com/pnpforge/cardsheets/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	cardDir := flag.String("dir", "", "folder with card images (overrides config)")
	outputDir := flag.String("output-dir", ".", "directory to write PDF files into")
	outputBase := flag.String("out", "", "output base filename without .pdf (overrides config)")
	formatName := flag.String("format", "", "card format: poker, bridge, mini, tarot (overrides config)")
	layouts := flag.String("layouts", "", "comma-separated layouts: standard,bleed,gutterfold or all (overrides config)")
	papers := flag.String("papers", "", "comma-separated paper sizes: A4,Letter or both (overrides config)")
	quality := flag.String("quality", "", "quality preset: lossless, high, medium or low (overrides config)")
	logoPath := flag.String("logo", "", "logo image placed above the grid (overrides config)")
	copyrightName := flag.String("copyright", "", "copyright name for footer and PDF metadata (overrides config)")
	versionLabel := flag.String("version-label", "", "deck version string for the footer (overrides config)")
	outerBleed := flag.Int("outer-bleed", -1, "outer bleed pixels kept at sheet edges, 0 disables (overrides config)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[cardsheets] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Error loading config: %v", err)
	}
	applyOverrides(cfg, *cardDir, *outputBase, *formatName, *layouts, *papers, *quality, *logoPath, *copyrightName, *versionLabel, *outerBleed)

	if cfg.CardDir == "" {
		log.Fatal("No card folder given: set -dir or card_dir in the config")
	}
	if info, err := os.Stat(cfg.CardDir); err != nil || !info.IsDir() {
		log.Fatal("Card folder does not exist: %s", cfg.CardDir)
	}

	format, err := geometry.FormatByName(cfg.CardFormat)
	if err != nil {
		log.Fatal("%v", err)
	}
	geom := geometry.Resolve(format)

	opts, err := generator.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatal("%v", err)
	}
	opts.OutputDir = *outputDir

	pre, err := prep.New(filepath.Join(os.TempDir(), "cardsheets-cache"), geom, opts.Quality, log)
	if err != nil {
		log.Fatal("Error initializing image cache: %v", err)
	}
	defer pre.Cleanup()

	log.Info("%s | format %s (%dx%d px inner, %dx%d px bleed)",
		version.GetVersionInfo(), format.Name, geom.InnerPxW, geom.InnerPxH, geom.BleedPxW, geom.BleedPxH)
	log.Info("Scanning card folder: %s", cfg.CardDir)

	gen := generator.New(opts, geom, pre, log)

	var bar *progressbar.ProgressBar
	gen.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "documents")
		}
		_ = bar.Set(done)
	}

	report, err := gen.Run(context.Background())
	if err != nil {
		log.Fatal("%v", err)
	}

	report.Print(log)
	if report.Succeeded() == 0 && report.Failed() > 0 {
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, cardDir, outputBase, formatName, layouts, papers, quality, logoPath, copyrightName, versionLabel string, outerBleed int) {
	if cardDir != "" {
		cfg.CardDir = cardDir
	}
	if outputBase != "" {
		cfg.OutputBase = outputBase
	}
	if formatName != "" {
		cfg.CardFormat = formatName
	}
	if layouts != "" {
		cfg.Layouts = splitList(layouts)
	}
	if papers != "" {
		cfg.PaperSizes = splitList(papers)
	}
	if quality != "" {
		cfg.Quality = quality
	}
	if logoPath != "" {
		cfg.LogoPath = logoPath
	}
	if copyrightName != "" {
		cfg.CopyrightName = copyrightName
	}
	if versionLabel != "" {
		cfg.VersionLabel = versionLabel
	}
	if outerBleed >= 0 {
		cfg.OuterBleedPx = outerBleed
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
