package cover

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/raster"
)

// Renderer draws a request onto an in-memory surface.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Surface, error)
}

// Compile-time interface checks.
var (
	_ Renderer = (*RasterRenderer)(nil)
	_ Renderer = (*MarkupRenderer)(nil)
)

// RasterRenderer renders TemplateRequests with the built-in templates.
type RasterRenderer struct {
	engine *raster.Engine
}

// NewRasterRenderer creates a RasterRenderer drawing with fonts from src.
func NewRasterRenderer(src FontSource, logger *zap.Logger) *RasterRenderer {
	return &RasterRenderer{engine: raster.New(src, raster.WithLogger(logger))}
}

// Render draws a TemplateRequest.
func (r *RasterRenderer) Render(ctx context.Context, req Request) (*Surface, error) {
	tr, ok := req.(TemplateRequest)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %s backend", ErrInvalidRequest, req, BackendTemplate)
	}
	tr = tr.withDefaults()

	img, err := r.engine.Render(ctx, raster.Input{
		Template: tr.Template,
		Scheme:   tr.Color,
		Title:    tr.Title,
		Subtitle: tr.Subtitle,
		Items:    tr.Items,
	})
	if err != nil {
		return nil, err
	}
	return &Surface{Image: img, Backend: BackendTemplate}, nil
}
