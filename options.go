package cover

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/fontresolve"
	"github.com/alnah/go-cover/internal/raster"
)

// FontSource yields the font used by the template backend.
// *fontresolve.Resolver satisfies it.
type FontSource = raster.FontSource

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds internal configuration for Generator.
type generatorConfig struct {
	timeout      time.Duration
	stableWindow time.Duration
	scale        float64
	maxBytes     int64
	quality      JPEGQuality
	assetPath    string
	fontOpts     []fontresolve.Option
}

func defaultConfig() generatorConfig {
	return generatorConfig{
		timeout:      defaultTimeout,
		stableWindow: defaultStableWindow,
		scale:        defaultScale,
		maxBytes:     MaxBytes,
		quality:      DefaultJPEGQuality,
	}
}

// WithTimeout sets the markup render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cover: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithStableWindow sets the quiet period a page must hold before capture.
// Panics if d <= 0.
func WithStableWindow(d time.Duration) Option {
	if d <= 0 {
		panic("cover: WithStableWindow duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.stableWindow = d
	}
}

// WithScale sets the browser device scale factor. Screenshots larger than
// the cover are downsampled. Panics if f is not in (0, 4].
func WithScale(f float64) Option {
	if f <= 0 || f > maxScale {
		panic(fmt.Sprintf("cover: WithScale factor must be in (0, %g]", maxScale))
	}
	return func(g *Generator) {
		g.cfg.scale = f
	}
}

// WithSizeLimit sets the byte ceiling. Panics if n <= 0.
func WithSizeLimit(n int64) Option {
	if n <= 0 {
		panic("cover: WithSizeLimit must be positive")
	}
	return func(g *Generator) {
		g.cfg.maxBytes = n
	}
}

// WithJPEGQuality sets the JPEG fallback ladder. Panics if q is invalid.
func WithJPEGQuality(q JPEGQuality) Option {
	if err := q.Validate(); err != nil {
		panic("cover: " + err.Error())
	}
	return func(g *Generator) {
		g.cfg.quality = q
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithFontSource replaces font discovery for the template backend.
func WithFontSource(src FontSource) Option {
	return func(g *Generator) {
		g.fonts = src
	}
}

// WithFontFamilies sets the acceptable font families in priority order.
func WithFontFamilies(families ...string) Option {
	return func(g *Generator) {
		g.cfg.fontOpts = append(g.cfg.fontOpts, fontresolve.WithFamilies(families...))
	}
}

// WithFontFile loads the given font files instead of querying the host.
// boldPath may be empty.
func WithFontFile(path, boldPath string) Option {
	return func(g *Generator) {
		g.cfg.fontOpts = append(g.cfg.fontOpts, fontresolve.WithFontFile(path, boldPath))
	}
}

// WithFontListTimeout bounds each host font listing query.
func WithFontListTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("cover: WithFontListTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.fontOpts = append(g.cfg.fontOpts, fontresolve.WithLister(&fontresolve.FCList{Timeout: d}))
	}
}

// WithFontCheck toggles the CJK glyph check on resolved fonts (default on).
func WithFontCheck(enabled bool) Option {
	return func(g *Generator) {
		probe := ""
		if enabled {
			probe = fontresolve.DefaultProbe
		}
		g.cfg.fontOpts = append(g.cfg.fontOpts, fontresolve.WithProbe(probe))
	}
}

// WithAssetPath sets a directory of custom markup stylesheets and document
// shells. Missing assets fall back to the embedded ones.
func WithAssetPath(dir string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = dir
	}
}
