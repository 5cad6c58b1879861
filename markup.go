package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/pipeline"
	"github.com/alnah/go-cover/internal/process"
)

// Markup rendering defaults.
const (
	defaultTimeout      = 30 * time.Second
	defaultStableWindow = 300 * time.Millisecond
	defaultScale        = 1.0
	maxScale            = 4.0

	// launchTimeout bounds a browser launch, including a first-run download.
	launchTimeout = 3 * time.Minute
)

// freezeScript pauses every animation at its first frame once fonts are ready.
const freezeScript = `(css) => document.fonts.ready.then(() => {
	const style = document.createElement('style');
	style.textContent = css;
	(document.head || document.documentElement).appendChild(style);
	for (const a of document.getAnimations()) {
		a.pause();
		a.currentTime = 0;
	}
	return document.getAnimations().length;
})`

// markupSource turns a MarkupRequest into a local file the browser can open.
type markupSource interface {
	Prepare(ctx context.Context, req MarkupRequest) (path string, cleanup func(), err error)
}

// MarkupRenderer screenshots HTML or Markdown documents in headless Chrome.
// Rod downloads Chromium on first run if no browser is found.
// One renderer owns one browser process; concurrent renders each get their
// own incognito context. Call Close when done.
type MarkupRenderer struct {
	timeout      time.Duration
	stableWindow time.Duration
	scale        float64
	source       markupSource
	logger       *zap.Logger

	sem      chan struct{} // guards browser and launcher; waits honor ctx
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// newMarkupRenderer creates a renderer; the browser launches on first render.
func newMarkupRenderer(cfg generatorConfig, source markupSource, logger *zap.Logger) *MarkupRenderer {
	return &MarkupRenderer{
		timeout:      cfg.timeout,
		stableWindow: cfg.stableWindow,
		scale:        cfg.scale,
		source:       source,
		logger:       logger,
		sem:          make(chan struct{}, 1),
	}
}

func (r *MarkupRenderer) lock(ctx context.Context) error {
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *MarkupRenderer) unlock() { <-r.sem }

// ensureBrowser lazily launches and connects to the browser.
// A failed launch leaves the renderer unlaunched so the next call retries.
// A browser whose process has exited is discarded and relaunched.
// Waiting for another caller's launch and the launch itself, including a
// first-run Chromium download, stop when ctx is done.
func (r *MarkupRenderer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	if err := r.lock(ctx); err != nil {
		return nil, err
	}
	defer r.unlock()

	if r.browser != nil {
		if process.Alive(r.launcher.PID()) {
			return r.browser, nil
		}
		r.logger.Warn("browser process exited, relaunching", zap.Int("pid", r.launcher.PID()))
		r.release()
	}

	launchCtx, cancel := context.WithTimeout(ctx, launchTimeout)
	defer cancel()

	l := launcher.New().
		Context(launchCtx).
		Set("force-color-profile", "srgb").
		Set("hide-scrollbars")

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	start := time.Now()
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = b
	r.launcher = l
	r.logger.Debug("browser launched",
		zap.Int("pid", l.PID()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}

// browserPID returns the launched browser's pid, or 0 before launch.
func (r *MarkupRenderer) browserPID() int {
	r.sem <- struct{}{}
	defer r.unlock()
	if r.launcher == nil {
		return 0
	}
	return r.launcher.PID()
}

// Close releases the browser and kills its process group.
func (r *MarkupRenderer) Close() error {
	r.sem <- struct{}{}
	defer r.unlock()
	return r.release()
}

// release closes the browser and kills its process group. Caller holds sem.
func (r *MarkupRenderer) release() error {
	if r.browser == nil {
		return nil
	}

	pid := r.launcher.PID()
	err := r.browser.Close()
	r.launcher.Kill()
	process.KillProcessGroup(pid)
	if process.Alive(pid) {
		r.logger.Debug("browser process still exiting", zap.Int("pid", pid))
	}

	r.browser = nil
	r.launcher = nil
	return err
}

// Render loads the request in an isolated browser context, waits for the page
// to settle and captures the viewport.
func (r *MarkupRenderer) Render(ctx context.Context, req Request) (*Surface, error) {
	mr, ok := req.(MarkupRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %s backend", ErrInvalidRequest, req, BackendMarkup)
	}
	if err := mr.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := r.source.Prepare(ctx, mr)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browser, err := r.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	shot, err := r.capture(renderCtx, browser, fileURL(path))
	if err != nil {
		return nil, r.classify(ctx, renderCtx, err)
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding screenshot: %v", ErrScreenshot, err)
	}

	r.logger.Debug("markup rendered",
		zap.String("source", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Surface{Image: img, Backend: BackendMarkup}, nil
}

// capture runs one page lifecycle. The incognito context and page are
// released on every path, independently of ctx.
func (r *MarkupRenderer) capture(ctx context.Context, browser *rod.Browser, u string) ([]byte, error) {
	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = incognito.Close() }()

	raw, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = raw.Close() }()

	page := raw.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             Width,
		Height:            Height,
		DeviceScaleFactor: r.scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	if err := page.Navigate(u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitStable(r.stableWindow); err != nil {
		return nil, fmt.Errorf("%w: waiting for stable page: %v", ErrPageLoad, err)
	}
	if _, err := page.Eval(freezeScript, pipeline.FreezeCSS); err != nil {
		return nil, fmt.Errorf("%w: freezing animations: %v", ErrPageLoad, err)
	}

	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return shot, nil
}

// classify maps deadline errors from the render window to ErrRenderTimeout
// and surfaces caller cancellation unchanged.
func (r *MarkupRenderer) classify(parent, renderCtx context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	if renderCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrRenderTimeout, r.timeout, err)
	}
	return err
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// fileSource prepares markup requests as local files.
type fileSource struct {
	docs *documentBuilder
}

// Prepare returns a file for the request. Inline HTML and Markdown are
// written to a temporary file removed by cleanup.
func (s *fileSource) Prepare(ctx context.Context, req MarkupRequest) (string, func(), error) {
	noop := func() {}

	if req.source() == sourcePath {
		abs, err := filepath.Abs(req.HTMLPath)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
		}
		if !fileutil.FileExists(abs) {
			return "", nil, fmt.Errorf("%w: %s: no such file", ErrInvalidMarkup, req.HTMLPath)
		}
		return abs, noop, nil
	}

	doc, err := s.docs.Build(ctx, req)
	if err != nil {
		return "", nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return path, cleanup, nil
}
