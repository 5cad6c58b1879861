// Package config loads the YAML configuration of the cover CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-cover/internal/dateutil"
	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/raster"
	"github.com/alnah/go-cover/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name under the user config directory.
const AppDir = "go-cover"

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxFileNameLength = 255
	MaxNameLength     = 64  // template, color, style names
	MaxFamilyLength   = 100 // font family name
	MaxFamilies       = 16
	MaxDurationLength = 20
)

// Range limits.
const (
	MaxScale    = 4.0
	MinMaxBytes = 64 << 10
	MaxMaxBytes = 50 << 20
)

// Config holds the CLI configuration.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Raster     RasterConfig     `yaml:"raster"`
	Font       FontConfig       `yaml:"font"`
	Markup     MarkupConfig     `yaml:"markup"`
	Compliance ComplianceConfig `yaml:"compliance"`
	History    HistoryConfig    `yaml:"history"`
	Assets     AssetsConfig     `yaml:"assets"`
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	BaseDir     string `yaml:"baseDir"`     // run directories are created here (default: ./covers)
	FileName    string `yaml:"fileName"`    // default: cover.png
	StampFormat string `yaml:"stampFormat"` // run directory name format (default: YYYYMMDD_HHmmss)
}

// RasterConfig sets template backend defaults.
type RasterConfig struct {
	Template string `yaml:"template"` // gradient, minimal, list, bold
	Color    string `yaml:"color"`    // warm, cool, green, neutral
}

// FontConfig controls font discovery.
type FontConfig struct {
	Families    []string `yaml:"families"`    // priority order; empty = built-in CJK list
	Path        string   `yaml:"path"`        // explicit regular face, skips discovery
	BoldPath    string   `yaml:"boldPath"`    // optional explicit bold face
	RequireCJK  *bool    `yaml:"requireCJK"`  // default true
	ListTimeout string   `yaml:"listTimeout"` // e.g. "5s"
}

// MarkupConfig controls the headless browser backend.
type MarkupConfig struct {
	Timeout      string  `yaml:"timeout"`      // e.g. "30s"
	StableWindow string  `yaml:"stableWindow"` // e.g. "300ms"
	Scale        float64 `yaml:"scale"`        // device scale factor, 0 = 1
	Style        string  `yaml:"style"`        // default stylesheet for Markdown
}

// ComplianceConfig controls the size ceiling and JPEG fallback.
type ComplianceConfig struct {
	MaxBytes  int64 `yaml:"maxBytes"`  // default 5 MiB
	JPEGStart int   `yaml:"jpegStart"` // default 92
	JPEGStep  int   `yaml:"jpegStep"`  // default 5
	JPEGMin   int   `yaml:"jpegMin"`   // default 60
}

// HistoryConfig controls the artifact ledger.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled"` // default true
	Path    string `yaml:"path"`    // default: <baseDir>/history.db
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// RequireCJKGlyphs reports whether resolved fonts must cover CJK.
func (f FontConfig) RequireCJKGlyphs() bool {
	return f.RequireCJK == nil || *f.RequireCJK
}

// IsEnabled reports whether the ledger is on.
func (h HistoryConfig) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// ListTimeoutDuration returns the parsed font list timeout, 0 when unset.
func (f FontConfig) ListTimeoutDuration() time.Duration {
	d, _ := parseDuration(f.ListTimeout)
	return d
}

// TimeoutDuration returns the parsed render timeout, 0 when unset.
func (m MarkupConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration(m.Timeout)
	return d
}

// StableWindowDuration returns the parsed stability window, 0 when unset.
func (m MarkupConfig) StableWindowDuration() time.Duration {
	d, _ := parseDuration(m.StableWindow)
	return d
}

// Validate checks field lengths, enums and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.baseDir", c.Output.BaseDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.fileName", c.Output.FileName, MaxFileNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Output.FileName, `/\`) {
		return fmt.Errorf("%w: output.fileName must be a file name, got %q", ErrInvalidValue, c.Output.FileName)
	}
	if c.Output.StampFormat != "" {
		if _, err := dateutil.RunStamp(time.Time{}, c.Output.StampFormat); err != nil {
			return fmt.Errorf("%w: output.stampFormat: %v", ErrInvalidValue, err)
		}
	}

	if err := validateFieldLength("raster.template", c.Raster.Template, MaxNameLength); err != nil {
		return err
	}
	if c.Raster.Template != "" {
		if _, err := raster.LookupTemplate(c.Raster.Template); err != nil {
			return fmt.Errorf("%w: raster.template: %w", ErrInvalidValue, err)
		}
	}
	if err := validateFieldLength("raster.color", c.Raster.Color, MaxNameLength); err != nil {
		return err
	}
	if c.Raster.Color != "" {
		if _, err := raster.LookupScheme(c.Raster.Color); err != nil {
			return fmt.Errorf("%w: raster.color: %w", ErrInvalidValue, err)
		}
	}

	if len(c.Font.Families) > MaxFamilies {
		return fmt.Errorf("%w: font.families has %d entries, max %d", ErrInvalidValue, len(c.Font.Families), MaxFamilies)
	}
	for i, f := range c.Font.Families {
		if err := validateFieldLength(fmt.Sprintf("font.families[%d]", i), f, MaxFamilyLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("font.path", c.Font.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("font.boldPath", c.Font.BoldPath, MaxPathLength); err != nil {
		return err
	}
	if c.Font.BoldPath != "" && c.Font.Path == "" {
		return fmt.Errorf("%w: font.boldPath requires font.path", ErrInvalidValue)
	}
	if err := validateDuration("font.listTimeout", c.Font.ListTimeout); err != nil {
		return err
	}

	if err := validateDuration("markup.timeout", c.Markup.Timeout); err != nil {
		return err
	}
	if err := validateDuration("markup.stableWindow", c.Markup.StableWindow); err != nil {
		return err
	}
	if c.Markup.Scale < 0 || c.Markup.Scale > MaxScale {
		return fmt.Errorf("%w: markup.scale must be between 0 and %.0f, got %.2f", ErrInvalidValue, MaxScale, c.Markup.Scale)
	}
	if err := validateFieldLength("markup.style", c.Markup.Style, MaxPathLength); err != nil {
		return err
	}

	if c.Compliance.MaxBytes != 0 && (c.Compliance.MaxBytes < MinMaxBytes || c.Compliance.MaxBytes > MaxMaxBytes) {
		return fmt.Errorf("%w: compliance.maxBytes must be between %d and %d, got %d",
			ErrInvalidValue, MinMaxBytes, MaxMaxBytes, c.Compliance.MaxBytes)
	}
	if err := validateQuality("compliance.jpegStart", c.Compliance.JPEGStart); err != nil {
		return err
	}
	if err := validateQuality("compliance.jpegMin", c.Compliance.JPEGMin); err != nil {
		return err
	}
	if c.Compliance.JPEGStep < 0 || c.Compliance.JPEGStep > 50 {
		return fmt.Errorf("%w: compliance.jpegStep must be between 0 and 50, got %d", ErrInvalidValue, c.Compliance.JPEGStep)
	}
	if c.Compliance.JPEGStart != 0 && c.Compliance.JPEGMin != 0 && c.Compliance.JPEGMin > c.Compliance.JPEGStart {
		return fmt.Errorf("%w: compliance.jpegMin (%d) exceeds jpegStart (%d)",
			ErrInvalidValue, c.Compliance.JPEGMin, c.Compliance.JPEGStart)
	}

	if err := validateFieldLength("history.path", c.History.Path, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateDuration(fieldName, value string) error {
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return err
	}
	if _, err := parseDuration(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	return nil
}

func validateQuality(fieldName string, q int) error {
	if q != 0 && (q < 1 || q > 100) {
		return fmt.Errorf("%w: %s must be between 1 and 100, got %d", ErrInvalidValue, fieldName, q)
	}
	return nil
}

// parseDuration accepts Go duration strings; empty means unset.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{BaseDir: "covers", FileName: "cover.png", StampFormat: dateutil.DefaultRunFormat},
		Raster: RasterConfig{Template: raster.DefaultTemplate, Color: raster.DefaultScheme},
		Markup: MarkupConfig{Timeout: "30s", StableWindow: "300ms", Scale: 1},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup order:
// ./name.yaml, ./name.yml, then the same under the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
