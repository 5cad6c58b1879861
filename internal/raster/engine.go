// Package raster draws cover images from built-in templates and color schemes.
//
// A template fixes the layout (background art, text blocks, decorations) and
// a scheme fixes the palette. Titles are wrapped one character at a time so
// CJK text needs no word boundaries, and text that exceeds a block's line
// budget is truncated with an ellipsis. Rendering is deterministic: the same
// input and font always produce the same pixels.
package raster

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/fontresolve"
)

// FontSource yields the font used for every glyph on the canvas.
type FontSource interface {
	Resolve(ctx context.Context) (*fontresolve.Handle, error)
}

// Input selects a template and scheme and carries the text to draw.
type Input struct {
	Template string
	Scheme   string
	Title    string
	Subtitle string   // optional
	Items    []string // list template rows; extracted from Subtitle or Title when empty
}

// Engine renders templates. Safe for concurrent use.
type Engine struct {
	fonts  FontSource
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine drawing with fonts from src.
func New(src FontSource, opts ...Option) *Engine {
	e := &Engine{fonts: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render validates in and draws it onto a Width×Height canvas.
// The template is validated before the scheme, then the title.
// Font resolution errors are returned unchanged.
func (e *Engine) Render(ctx context.Context, in Input) (image.Image, error) {
	c, err := e.draw(ctx, in)
	if err != nil {
		return nil, err
	}
	return c.dc.Image(), nil
}

// draw runs one render and returns the finished canvas with its text blocks.
func (e *Engine) draw(ctx context.Context, in Input) (c *canvas, err error) {
	t, err := LookupTemplate(in.Template)
	if err != nil {
		return nil, err
	}
	s, err := LookupScheme(in.Scheme)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrEmptyTitle
	}
	in.Subtitle = strings.TrimSpace(in.Subtitle)
	in.Items = cleanItems(in.Items)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := e.fonts.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if missing := missingGlyphs(h, in); missing != "" {
		e.logger.Warn("font lacks glyphs, they render as boxes",
			zap.String("font", h.Family),
			zap.String("runes", missing),
		)
	}

	start := time.Now()
	c = newCanvas(h)
	defer c.close()

	defer func() {
		if r := recover(); r != nil {
			c = nil
			err = fmt.Errorf("%w: drawing %s: %v", ErrRender, t.ID, r)
		}
	}()

	if err := t.draw(c, t, s, in); err != nil {
		return nil, err
	}

	if c.dropped > 0 {
		e.logger.Warn("list rows did not fit", zap.Int("dropped", c.dropped))
	}
	e.logger.Debug("template rendered",
		zap.String("template", t.ID),
		zap.String("scheme", s.ID),
		zap.String("font", h.Family),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

// maxMissingReported caps the runes listed in a missing-glyph warning.
const maxMissingReported = 16

// missingGlyphs returns the distinct visible runes of in that h cannot draw.
func missingGlyphs(h *fontresolve.Handle, in Input) string {
	seen := make(map[rune]bool)
	var out []rune
	for _, text := range append([]string{in.Title, in.Subtitle}, in.Items...) {
		for _, r := range text {
			if unicode.IsSpace(r) || seen[r] {
				continue
			}
			seen[r] = true
			if !h.Covers(r) && len(out) < maxMissingReported {
				out = append(out, r)
			}
		}
	}
	return string(out)
}

func cleanItems(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
