// Package config reads and writes gulbok.yaml, the per-project
// configuration for the pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level gulbok.yaml configuration.
type Config struct {
	Project         ProjectConfig           `yaml:"project"`
	Paths           PathsConfig             `yaml:"paths"`
	Reconciliation  ReconciliationConfig    `yaml:"reconciliation"`
	ReferenceTotals map[int]ReferenceTotals `yaml:"reference_totals,omitempty"`
	ManualFigures   map[int]ManualFigures   `yaml:"manual_figures,omitempty"`
	Git             GitConfig               `yaml:"git"`
}

// ProjectConfig identifies the dataset.
type ProjectConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// PathsConfig locates source files and output directories, relative to the
// project root unless absolute.
type PathsConfig struct {
	SourceDir string `yaml:"source_dir"`
	OutDir    string `yaml:"out_dir"`
}

// ReconciliationConfig controls the settled-join quality warnings.
type ReconciliationConfig struct {
	NewLineWarnFraction float64 `yaml:"new_line_warn_fraction"`
}

// ReferenceTotals are externally known totals for a budget year, used by
// the validator; a year with no entry is simply not checked against them.
// Amounts in kroner.
type ReferenceTotals struct {
	Utgifter              int64 `yaml:"utgifter"`
	Inntekter             int64 `yaml:"inntekter"`
	OljekorrigertUtgifter int64 `yaml:"oljekorrigert_utgifter,omitempty"`
	Margin                int64 `yaml:"margin"`
}

// ManualFigures are numbers published in Nasjonalbudsjettet that cannot be
// computed from the Gul bok table.
type ManualFigures struct {
	StruktureltUnderskudd int64   `yaml:"strukturelt_underskudd"`
	Uttaksprosent         float64 `yaml:"uttaksprosent"`
}

// GitConfig controls publishing of exported data directories.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a gulbok.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project,
// including the published reference totals for the years we know.
func Default(name string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:     name,
			Currency: "NOK",
		},
		Paths: PathsConfig{
			SourceDir: "kilder",
			OutDir:    "data",
		},
		Reconciliation: ReconciliationConfig{
			NewLineWarnFraction: 0.10,
		},
		ReferenceTotals: map[int]ReferenceTotals{
			2025: {
				Utgifter:              2_970_900_000_000,
				Inntekter:             2_796_800_000_000,
				OljekorrigertUtgifter: 2_246_000_000_000,
				Margin:                500_000_000,
			},
		},
		ManualFigures: map[int]ManualFigures{
			2026: {
				StruktureltUnderskudd: 579_400_000_000,
				Uttaksprosent:         3.1,
			},
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Gul bok-pipeline",
			AuthorEmail: "pipeline@gulbok.dev",
		},
	}
}
