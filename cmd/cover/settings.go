package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/hints"
	"github.com/alnah/go-cover/internal/history"
)

// loadConfig resolves configuration with the precedence
// environment > config file > defaults. Flags are merged by the caller.
func loadConfig(common *commonFlags, envCfg *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		fillDefaults(cfg)
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// fillDefaults sets defaults for fields a config file left empty.
func fillDefaults(cfg *config.Config) {
	def := config.DefaultConfig()
	if cfg.Output.BaseDir == "" {
		cfg.Output.BaseDir = def.Output.BaseDir
	}
	if cfg.Output.FileName == "" {
		cfg.Output.FileName = def.Output.FileName
	}
	if cfg.Output.StampFormat == "" {
		cfg.Output.StampFormat = def.Output.StampFormat
	}
	if cfg.Raster.Template == "" {
		cfg.Raster.Template = def.Raster.Template
	}
	if cfg.Raster.Color == "" {
		cfg.Raster.Color = def.Raster.Color
	}
	if cfg.Markup.Timeout == "" {
		cfg.Markup.Timeout = def.Markup.Timeout
	}
	if cfg.Markup.StableWindow == "" {
		cfg.Markup.StableWindow = def.Markup.StableWindow
	}
	if cfg.Markup.Scale == 0 {
		cfg.Markup.Scale = def.Markup.Scale
	}
}

// mergeOutputFlags applies output and compliance flags to cfg.
func mergeOutputFlags(out *outputFlags, comp *complianceFlags, cfg *config.Config) {
	if out.baseDir != "" {
		cfg.Output.BaseDir = out.baseDir
	}
	if out.noHistory {
		disabled := false
		cfg.History.Enabled = &disabled
	}
	if comp.maxBytes != 0 {
		cfg.Compliance.MaxBytes = comp.maxBytes
	}
	if comp.jpegMin != 0 {
		cfg.Compliance.JPEGMin = comp.jpegMin
	}
}

// mergeTemplateFlags applies template command flags to cfg (CLI wins).
func mergeTemplateFlags(f *templateFlags, cfg *config.Config) {
	mergeOutputFlags(&f.output, &f.compliance, cfg)
	if f.template != "" {
		cfg.Raster.Template = f.template
	}
	if f.color != "" {
		cfg.Raster.Color = f.color
	}
	if f.font.path != "" {
		cfg.Font.Path = f.font.path
		cfg.Font.BoldPath = f.font.boldPath
	}
	if len(f.font.families) > 0 {
		cfg.Font.Families = f.font.families
	}
	if f.font.noCheck {
		require := false
		cfg.Font.RequireCJK = &require
	}
}

// mergeHTMLFlags applies html command flags to cfg (CLI wins).
func mergeHTMLFlags(f *htmlFlags, cfg *config.Config) {
	mergeOutputFlags(&f.output, &f.compliance, cfg)
	if f.markup.timeout != "" {
		cfg.Markup.Timeout = f.markup.timeout
	}
	if f.markup.scale != 0 {
		cfg.Markup.Scale = f.markup.scale
	}
	if f.markup.style != "" {
		cfg.Markup.Style = f.markup.style
	}
	if f.markup.assetPath != "" {
		cfg.Assets.BasePath = f.markup.assetPath
	}
}

// generatorOptions translates a validated config into generator options.
func generatorOptions(cfg *config.Config, env *Environment) []cover.Option {
	opts := []cover.Option{cover.WithLogger(env.Logger)}

	if env.Fonts != nil {
		opts = append(opts, cover.WithFontSource(env.Fonts))
	} else {
		if cfg.Font.Path != "" {
			opts = append(opts, cover.WithFontFile(cfg.Font.Path, cfg.Font.BoldPath))
		}
		if len(cfg.Font.Families) > 0 {
			opts = append(opts, cover.WithFontFamilies(cfg.Font.Families...))
		}
		if d := cfg.Font.ListTimeoutDuration(); d > 0 {
			opts = append(opts, cover.WithFontListTimeout(d))
		}
		opts = append(opts, cover.WithFontCheck(cfg.Font.RequireCJKGlyphs()))
	}

	if d := cfg.Markup.TimeoutDuration(); d > 0 {
		opts = append(opts, cover.WithTimeout(d))
	}
	if d := cfg.Markup.StableWindowDuration(); d > 0 {
		opts = append(opts, cover.WithStableWindow(d))
	}
	if cfg.Markup.Scale > 0 {
		opts = append(opts, cover.WithScale(cfg.Markup.Scale))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, cover.WithAssetPath(cfg.Assets.BasePath))
	}

	if cfg.Compliance.MaxBytes > 0 {
		opts = append(opts, cover.WithSizeLimit(cfg.Compliance.MaxBytes))
	}
	if q, ok := jpegQuality(cfg.Compliance); ok {
		opts = append(opts, cover.WithJPEGQuality(q))
	}

	return opts
}

// jpegQuality returns the configured ladder when any field deviates from the default.
func jpegQuality(c config.ComplianceConfig) (cover.JPEGQuality, bool) {
	if c.JPEGStart == 0 && c.JPEGStep == 0 && c.JPEGMin == 0 {
		return cover.JPEGQuality{}, false
	}
	q := cover.DefaultJPEGQuality
	if c.JPEGStart != 0 {
		q.Start = c.JPEGStart
	}
	if c.JPEGStep != 0 {
		q.Step = c.JPEGStep
	}
	if c.JPEGMin != 0 {
		q.Min = c.JPEGMin
	}
	if q.Min > q.Start {
		q.Min = q.Start
	}
	return q, true
}

// historyPath returns the ledger file for cfg.
func historyPath(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return filepath.Join(cfg.Output.BaseDir, history.DefaultFileName)
}

// openHistory opens the ledger, or returns nil when disabled or unavailable.
// Failures are logged and never abort a render.
func openHistory(cfg *config.Config, logger *zap.Logger) *history.Store {
	if !cfg.History.IsEnabled() {
		return nil
	}
	store, err := history.Open(historyPath(cfg))
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
		return nil
	}
	return store
}

// runDir creates a fresh run directory under the configured base.
func runDir(cfg *config.Config, now time.Time) (string, error) {
	return cover.RunDirFormat(cfg.Output.BaseDir, now, cfg.Output.StampFormat)
}

// readCSSFile reads an extra stylesheet, if one was given.
func readCSSFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided stylesheet
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(data), nil
}
