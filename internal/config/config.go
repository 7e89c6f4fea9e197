package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

type LoggingCfg struct {
	File         string `yaml:"file" json:"file"`                   // Optional append-only log file
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	Languages        []string   `yaml:"languages" json:"languages"`
	AllowRemovingAll bool       `yaml:"allow_removing_all" json:"allow_removing_all"`
	KeepPatterns     []string   `yaml:"keep_patterns" json:"keep_patterns"` // doublestar globs, matched against lower-cased entry names
	DryRun           bool       `yaml:"dry_run" json:"dry_run"`
	ProtectedPaths   []string   `yaml:"protected_paths" json:"protected_paths"`   // Extra resource directories that must never be pruned
	DatabasePath     string     `yaml:"database_path" json:"database_path"`       // SQLite prune history, empty disables
	MetricsTextfile  string     `yaml:"metrics_textfile" json:"metrics_textfile"` // Prometheus textfile output, empty disables
	Logging          LoggingCfg `yaml:"logging" json:"logging"`
}

var (
	errInvalidPattern = errors.New("invalid keep pattern")
	errEmptyLanguage  = errors.New("languages must not contain empty entries")
	errInvalidPath    = errors.New("path must be absolute")
)

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate re-checks a config after CLI overrides have been applied
func (c *Config) Validate() error {
	return c.validateAndDefault()
}

func (c *Config) validateAndDefault() error {
	langs := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		l = strings.TrimSpace(l)
		if l == "" {
			return errEmptyLanguage
		}
		langs = append(langs, l)
	}
	c.Languages = langs

	for _, p := range c.KeepPatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", errInvalidPattern, p)
		}
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	for _, p := range []*string{&c.DatabasePath, &c.MetricsTextfile, &c.Logging.File} {
		if *p == "" {
			continue
		}
		cp, err := cleanAbsolute(*p)
		if err != nil {
			return err
		}
		*p = cp
	}

	return nil
}

func cleanAbsolute(p string) (string, error) {
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}
