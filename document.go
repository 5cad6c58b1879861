package cover

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/alnah/go-cover/internal/assets"
	"github.com/alnah/go-cover/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ markupSource           = (*fileSource)(nil)
)

// documentBuilder turns inline markup into a complete HTML document.
type documentBuilder struct {
	loader    assets.AssetLoader
	converter pipeline.HTMLConverter
	css       pipeline.CSSInjector
	shell     *pipeline.DocumentShell
}

func newDocumentBuilder(loader assets.AssetLoader) (*documentBuilder, error) {
	tmpl, err := loader.LoadTemplate(assets.DefaultDocumentName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	shell, err := pipeline.NewDocumentShell(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetNotFound, err)
	}
	return &documentBuilder{
		loader:    loader,
		converter: pipeline.NewGoldmarkConverter(),
		css:       &pipeline.CSSInjection{},
		shell:     shell,
	}, nil
}

// Build returns the HTML document for an HTML or Markdown request.
// Inline HTML is used as is, with relative paths resolved against
// req.SourceDir and req.CSS injected when set.
func (d *documentBuilder) Build(ctx context.Context, req MarkupRequest) (string, error) {
	switch req.source() {
	case sourceHTML:
		doc, err := pipeline.RewriteRelativePaths(req.HTML, req.SourceDir)
		if err != nil {
			return "", fmt.Errorf("%w: rewriting paths: %v", ErrInvalidMarkup, err)
		}
		return d.css.InjectCSS(ctx, doc, req.CSS), nil
	case sourceMarkdown:
	default:
		return "", ErrInvalidMarkup
	}

	style := req.Style
	if style == "" {
		style = assets.DefaultStyleName
	}
	css, err := d.loader.LoadStyle(style)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidAssetName) || errors.Is(err, assets.ErrStyleNotFound) {
			return "", fmt.Errorf("%w: %v", ErrAssetNotFound, err)
		}
		return "", err
	}
	if req.CSS != "" {
		css += "\n" + req.CSS
	}

	md := pipeline.Preprocess(req.Markdown)
	body, err := d.converter.ToHTML(ctx, md)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}
	body = pipeline.ConvertMarkPlaceholders(body)

	if req.SourceDir != "" {
		if body, err = pipeline.RewriteRelativePaths(body, req.SourceDir); err != nil {
			return "", fmt.Errorf("%w: rewriting paths: %v", ErrInvalidMarkup, err)
		}
	}

	doc, err := d.shell.Render(pipeline.DocumentData{
		Title:  pipeline.ExtractTitle(md),
		Width:  Width,
		Height: Height,
		Body:   template.HTML(body), // #nosec G203 -- goldmark output without WithUnsafe
	})
	if err != nil {
		return "", err
	}
	return d.css.InjectCSS(ctx, doc, css), nil
}
