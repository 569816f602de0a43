// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the already-validated run inputs: card format, layout
// and paper selections, quality preset, footer content and cut-mark
// styling. Loaded from YAML; every field has a usable default.
type Config struct {
	CardDir       string   `yaml:"card_dir"`
	OutputBase    string   `yaml:"output_base"`
	CardFormat    string   `yaml:"card_format"`
	Layouts       []string `yaml:"layouts"`
	PaperSizes    []string `yaml:"paper_sizes"`
	Quality       string   `yaml:"quality"`
	LogoPath      string   `yaml:"logo_path"`
	CopyrightName string   `yaml:"copyright_name"`
	VersionLabel  string   `yaml:"version_label"`
	// OuterBleedPx is the bleed fringe retained at the silhouette of
	// standard-layout sheets; 0 disables the feature.
	OuterBleedPx int `yaml:"outer_bleed_px"`
	CutMarks     struct {
		LengthPtStandard float64 `yaml:"length_pt_standard"`
		WidthPtStandard  float64 `yaml:"width_pt_standard"`
		LengthPtBleed    float64 `yaml:"length_pt_bleed"`
		WidthPtBleed     float64 `yaml:"width_pt_bleed"`
	} `yaml:"cutmarks"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		OutputBase: "cards",
		CardFormat: "poker",
		Quality:    "high",
	}
	cfg.CutMarks.LengthPtStandard = 10.0
	cfg.CutMarks.WidthPtStandard = 1.0
	cfg.CutMarks.LengthPtBleed = 20.0
	cfg.CutMarks.WidthPtBleed = 1.0
	return cfg
}

// Load reads a YAML config file and fills in defaults for anything the
// file leaves unset. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.OutputBase == "" {
		cfg.OutputBase = "cards"
	}
	if cfg.CardFormat == "" {
		cfg.CardFormat = "poker"
	}
	if cfg.Quality == "" {
		cfg.Quality = "high"
	}
	if cfg.CutMarks.LengthPtStandard <= 0 {
		cfg.CutMarks.LengthPtStandard = 10.0
	}
	if cfg.CutMarks.WidthPtStandard <= 0 {
		cfg.CutMarks.WidthPtStandard = 1.0
	}
	if cfg.CutMarks.LengthPtBleed <= 0 {
		cfg.CutMarks.LengthPtBleed = 20.0
	}
	if cfg.CutMarks.WidthPtBleed <= 0 {
		cfg.CutMarks.WidthPtBleed = 1.0
	}

	return cfg, nil
}
