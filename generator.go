package cover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/assets"
	"github.com/alnah/go-cover/internal/fontresolve"
)

// Generator renders requests with either backend and writes compliant covers.
// Create with NewGenerator, call Close when done. Safe for concurrent use.
type Generator struct {
	cfg        generatorConfig
	logger     *zap.Logger
	fonts      FontSource
	docs       *documentBuilder
	compliance *Compliance
	raster     Renderer

	markupMu sync.Mutex
	markup   Renderer // created on first markup request
}

// NewGenerator creates a Generator. Fonts are resolved on the first template
// render and the browser launches on the first markup render.
// Returns an error if the custom asset path is invalid.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:    defaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.fonts == nil {
		fontOpts := append([]fontresolve.Option{fontresolve.WithLogger(g.logger)}, g.cfg.fontOpts...)
		g.fonts = fontresolve.New(fontOpts...)
	}

	loader, err := assets.NewAssetResolver(g.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	if g.docs, err = newDocumentBuilder(loader); err != nil {
		return nil, err
	}

	if g.compliance == nil {
		g.compliance = NewCompliance(g.cfg.maxBytes, g.cfg.quality, g.logger)
	}
	if g.raster == nil {
		g.raster = NewRasterRenderer(g.fonts, g.logger)
	}
	return g, nil
}

// Render produces a compliant encoded image without writing it.
// Recovers from internal panics so drawing failures never crash callers.
func (g *Generator) Render(ctx context.Context, req Request) (enc *Encoded, err error) {
	defer func() {
		if r := recover(); r != nil {
			enc = nil
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := g.renderer(req.backend())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	surface, err := r.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	enc, err = g.compliance.Normalize(surface)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("cover encoded",
		zap.String("backend", string(req.backend())),
		zap.String("format", string(enc.Format)),
		zap.Int("bytes", len(enc.Data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return enc, nil
}

// Generate renders req and writes the cover to path. The extension of path
// is corrected to match the chosen format; the returned Artifact holds the
// final path.
func (g *Generator) Generate(ctx context.Context, req Request, path string) (*Artifact, error) {
	enc, err := g.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return WriteArtifact(path, enc)
}

// Fonts returns the font source used by the template backend.
func (g *Generator) Fonts() FontSource {
	return g.fonts
}

// Close releases the browser, if one was launched.
func (g *Generator) Close() error {
	g.markupMu.Lock()
	m := g.markup
	g.markup = nil
	g.markupMu.Unlock()

	if c, ok := m.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (g *Generator) renderer(b Backend) (Renderer, error) {
	switch b {
	case BackendTemplate:
		return g.raster, nil
	case BackendMarkup:
		g.markupMu.Lock()
		defer g.markupMu.Unlock()
		if g.markup == nil {
			g.markup = newMarkupRenderer(g.cfg, &fileSource{docs: g.docs}, g.logger)
		}
		return g.markup, nil
	default:
		return nil, fmt.Errorf("%w: backend %q", ErrInvalidRequest, b)
	}
}
