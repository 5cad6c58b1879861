// Package pipeline turns inline markup into the HTML document a markup cover
// is captured from.
//
// Stages:
//   - Markdown preprocessing (line endings, BOM, ==highlight== syntax)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Wrapping the fragment in the document shell template
//   - Relative asset path rewriting
//   - CSS injection, including the freeze stylesheet applied before capture
//
// Browser capture is handled by the root cover package; this package never
// touches Chrome.
package pipeline
