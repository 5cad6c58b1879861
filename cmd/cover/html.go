package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/history"
	"github.com/alnah/go-cover/internal/pipeline"
)

// Sentinel errors for markup input handling.
var (
	ErrInvalidExtension   = errors.New("input must be a .html, .htm, .md or .markdown file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// watchDebounce groups the burst of events an editor emits on save.
const watchDebounce = 500 * time.Millisecond

// FileToRender is a single markup input and its cover path.
type FileToRender struct {
	InputPath  string
	OutputPath string
}

// markupParams groups settings shared by every file of a batch.
type markupParams struct {
	style string
	css   string
}

// batchError reports a partially failed batch. It unwraps to the first
// failure so exit codes follow the failing stage.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d covers failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// runHTMLCmd renders HTML or Markdown files in a headless browser.
func runHTMLCmd(ctx context.Context, args []string, env *Environment) error {
	f, inputs, err := parseHTMLFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	setupLogger(env, &f.common)

	if len(inputs) == 0 {
		return ErrNoInput
	}
	if err := validateWorkers(f.workers); err != nil {
		return err
	}
	if f.watch && len(inputs) != 1 {
		return fmt.Errorf("%w: --watch takes a single input", ErrUsage)
	}

	cfg, envCfg, err := htmlConfig(f, env)
	if err != nil {
		return err
	}

	css, err := readCSSFile(f.markup.css)
	if err != nil {
		return err
	}
	params := &markupParams{style: cfg.Markup.Style, css: css}

	now := env.Now()
	files, err := planOutputs(inputs, f.output.path, cfg, now)
	if err != nil {
		return err
	}

	workers := f.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	size := cover.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}
	env.Logger.Debug("generator pool", zap.Int("size", size))

	pool := env.NewPool(size, generatorOptions(cfg, env)...)
	defer func() {
		if err := pool.Close(); err != nil {
			env.Logger.Warn("closing browsers", zap.Error(err))
		}
	}()

	var runErr error
	withHistory(cfg, env.Logger, func(rec historyRecorder) {
		base := history.Entry{Backend: string(cover.BackendMarkup)}
		record := func(results []CoverResult) {
			recordResults(ctx, rec, base, results, env.Now(), env.Logger)
		}

		if f.watch {
			runErr = watchAndRender(ctx, pool, files[0], params, f.common, env, record)
			return
		}

		results := renderBatch(ctx, pool, files, params)
		record(results)
		runErr = finishBatch(results, f.common, env)
	})
	return runErr
}

// htmlConfig resolves and validates the configuration for the html command.
func htmlConfig(f *htmlFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig(env.Getenv, env.Logger)
	warnUnknownEnvVars(environ(), env.Logger)

	cfg, err := loadConfig(&f.common, envCfg)
	if err != nil {
		return nil, nil, err
	}
	mergeHTMLFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

// finishBatch prints results and turns failures into an error.
// A single failed input is returned as is.
func finishBatch(results []CoverResult, common commonFlags, env *Environment) error {
	if len(results) == 1 && results[0].Err != nil {
		return results[0].Err
	}

	failed := printResults(results, common.quiet, common.verbose, env)
	if failed == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			return &batchError{failed: failed, total: len(results), first: r.Err}
		}
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > cover.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, cover.MaxPoolSize)
	}
	return nil
}

// validateMarkupExtension checks that path is an HTML or Markdown file.
func validateMarkupExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".md", ".markdown":
		return nil
	}
	return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
}

// isMarkdown reports whether path has a Markdown extension.
func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// planOutputs assigns a cover path to each input. A single input needs an
// explicit output file. Several inputs go to the output directory, or a fresh
// run directory, as <stem>.png with -2, -3, ... appended to repeated stems.
func planOutputs(inputs []string, output string, cfg *config.Config, now time.Time) ([]FileToRender, error) {
	for _, in := range inputs {
		if err := validateMarkupExtension(in); err != nil {
			return nil, err
		}
	}

	if len(inputs) == 1 {
		if output == "" {
			return nil, fmt.Errorf("%w: use -o <file.png>", ErrOutputRequired)
		}
		return []FileToRender{{InputPath: inputs[0], OutputPath: output}}, nil
	}

	dir := output
	if dir == "" {
		var err error
		if dir, err = runDir(cfg, now); err != nil {
			return nil, err
		}
	}

	used := make(map[string]bool, len(inputs))
	files := make([]FileToRender, 0, len(inputs))
	for _, in := range inputs {
		stem := fileutil.StemOf(in)
		name := stem
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", stem, n)
		}
		used[name] = true
		files = append(files, FileToRender{
			InputPath:  in,
			OutputPath: filepath.Join(dir, name+cover.FormatPNG.Ext()),
		})
	}
	return files, nil
}

// buildMarkupRequest reads an input file into a render request and returns
// the title recorded in the history ledger.
// HTML files load from disk unless extra CSS must be injected.
func buildMarkupRequest(path string, params *markupParams) (cover.MarkupRequest, string, error) {
	stem := fileutil.StemOf(path)

	if !isMarkdown(path) && params.css == "" {
		return cover.MarkupRequest{HTMLPath: path}, stem, nil
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided input
	if err != nil {
		return cover.MarkupRequest{}, "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	req := cover.MarkupRequest{SourceDir: filepath.Dir(path), CSS: params.css}
	if !isMarkdown(path) {
		req.HTML = string(content)
		return req, stem, nil
	}

	req.Markdown = string(content)
	req.Style = params.style
	title := pipeline.ExtractTitle(req.Markdown)
	if title == "" {
		title = stem
	}
	return req, title, nil
}

// renderBatch processes files concurrently using the generator pool.
func renderBatch(ctx context.Context, pool Pool, files []FileToRender, params *markupParams) []CoverResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]CoverResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			g, err := pool.Acquire()
			if err != nil {
				// Generator creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = CoverResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(g)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = CoverResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, g, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderFile renders a single input and returns the result.
func renderFile(ctx context.Context, g CoverGenerator, f FileToRender, params *markupParams) CoverResult {
	start := time.Now()
	result := CoverResult{InputPath: f.InputPath}

	req, title, err := buildMarkupRequest(f.InputPath, params)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Title = title

	result.Artifact, result.Err = g.Generate(ctx, req, f.OutputPath)
	result.Duration = time.Since(start)
	return result
}

// watchAndRender renders f, then renders it again after each change to the
// input until ctx is done. Render failures are reported and watching goes on.
func watchAndRender(ctx context.Context, pool Pool, f FileToRender, params *markupParams, common commonFlags, env *Environment, record func([]CoverResult)) error {
	abs, err := filepath.Abs(f.InputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often save by replacing the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	render := func() {
		results := renderBatch(ctx, pool, []FileToRender{f}, params)
		if ctx.Err() != nil {
			return
		}
		printResults(results, common.quiet, common.verbose, env)
		record(results)
	}

	render()
	env.Logger.Info("watching for changes", zap.String("file", f.InputPath))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			env.Logger.Debug("input changed", zap.String("file", f.InputPath))
			render()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			env.Logger.Warn("watcher error", zap.Error(err))
		}
	}
}
