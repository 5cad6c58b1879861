package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/dateutil"
	"github.com/alnah/go-cover/internal/history"
)

// dateSeparator joins the subtitle and the resolved date line.
const dateSeparator = " · "

// runTemplateCmd renders a built-in template cover.
func runTemplateCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseTemplateFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	setupLogger(env, &f.common)

	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", ErrUsage, positional)
	}

	cfg, err := templateConfig(f, env)
	if err != nil {
		return err
	}

	now := env.Now()
	req, err := buildTemplateRequest(f, cfg, now)
	if err != nil {
		return err
	}

	g, err := cover.NewGenerator(generatorOptions(cfg, env)...)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	start := time.Now()
	enc, err := g.Render(ctx, req)
	if err != nil {
		return err
	}

	// The run directory is created only once the cover exists.
	path, err := templateOutputPath(f.output.path, cfg, now)
	if err != nil {
		return err
	}
	art, err := cover.WriteArtifact(path, enc)
	if err != nil {
		return err
	}

	results := []CoverResult{{Title: req.Title, Artifact: art, Duration: time.Since(start)}}
	printResults(results, f.common.quiet, f.common.verbose, env)

	withHistory(cfg, env.Logger, func(rec historyRecorder) {
		base := history.Entry{
			Backend:  string(cover.BackendTemplate),
			Template: req.Template,
			Color:    req.Color,
		}
		recordResults(ctx, rec, base, results, now, env.Logger)
	})
	return nil
}

// templateConfig resolves and validates the configuration for the template command.
func templateConfig(f *templateFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv, env.Logger)
	warnUnknownEnvVars(environ(), env.Logger)

	cfg, err := loadConfig(&f.common, envCfg)
	if err != nil {
		return nil, err
	}
	mergeTemplateFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildTemplateRequest assembles the render request. A --date value is
// resolved against now and appended to the subtitle.
func buildTemplateRequest(f *templateFlags, cfg *config.Config, now time.Time) (cover.TemplateRequest, error) {
	subtitle := f.text.subtitle
	if f.text.date != "" {
		date, err := dateutil.ResolveDate(f.text.date, now)
		if err != nil {
			return cover.TemplateRequest{}, err
		}
		if subtitle == "" {
			subtitle = date
		} else {
			subtitle += dateSeparator + date
		}
	}

	return cover.TemplateRequest{
		Title:    f.text.title,
		Subtitle: subtitle,
		Items:    f.text.items,
		Template: cfg.Raster.Template,
		Color:    cfg.Raster.Color,
	}, nil
}

// templateOutputPath returns the explicit output path, or a fresh run
// directory joined with the configured file name.
func templateOutputPath(output string, cfg *config.Config, now time.Time) (string, error) {
	if output != "" {
		return output, nil
	}
	dir, err := runDir(cfg, now)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cfg.Output.FileName), nil
}
