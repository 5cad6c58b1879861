// Package cover generates platform-compliant cover images.
//
// A cover is 1242×1660 pixels and at most 5 MB, encoded as PNG or JPEG.
// Two independent backends produce it:
//
//   - the template backend draws one of the built-in layouts (gradient,
//     minimal, list, bold) in one of the color schemes (warm, cool, green,
//     neutral) with a CJK-capable font resolved on the host;
//   - the markup backend screenshots an HTML or Markdown document in
//     headless Chrome (go-rod).
//
// Both converge on the compliance layer, which resizes to the exact
// dimensions and falls back from PNG to JPEG when the file is too large.
//
// # Quick Start
//
//	gen, err := cover.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	art, err := gen.Generate(ctx, cover.TemplateRequest{
//	    Title:    "周末读书清单",
//	    Template: "list",
//	    Color:    "cool",
//	    Items:    []string{"《置身事内》", "《长安的荔枝》"},
//	}, "workspace/cover.png")
//
// Markup covers take exactly one of HTMLPath, HTML or Markdown:
//
//	art, err := gen.Generate(ctx, cover.MarkupRequest{
//	    HTMLPath: "cover.html",
//	}, "out/cover.png")
//
// The returned Artifact carries the final path, which may differ from the
// requested one when the JPEG fallback changes the extension.
//
// # Fonts
//
// Fonts are never looked up at fixed paths. The template backend asks the
// host font facility (fc-list) for one of PingFang SC, Noto Sans CJK SC,
// Source Han Sans SC, Noto Sans SC or WenQuanYi Zen Hei and fails with
// ErrFontNotFound when none is installed. Use WithFontFile to bypass
// discovery.
//
// # Parallel Processing
//
// A Generator is safe for concurrent use. For batch markup rendering across
// several browsers, use GeneratorPool:
//
//	pool := cover.NewGeneratorPool(cover.ResolvePoolSize(0))
//	defer pool.Close()
//
//	gen, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(gen)
//
// # Errors
//
// All errors match a sentinel with errors.Is. Browser stage errors
// (ErrBrowserConnect, ErrPageCreate, ErrPageLoad, ErrScreenshot) also match
// ErrRender.
package cover
