package cover

import (
	"image"
	"strings"

	"github.com/alnah/go-cover/internal/raster"
)

// Cover dimensions and size ceiling required by the publishing platform.
const (
	Width    = raster.Width
	Height   = raster.Height
	MaxBytes = 5 * 1024 * 1024
)

// Format is the encoding of a cover file.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Backend identifies the renderer that produced a surface.
type Backend string

// Available backends.
const (
	BackendTemplate Backend = "template"
	BackendMarkup   Backend = "markup"
)

// Surface is a rendered image not yet checked for compliance.
type Surface struct {
	Image   image.Image
	Backend Backend
}

// Artifact describes a cover written to disk.
type Artifact struct {
	Path   string
	Size   int64
	Format Format
	Width  int
	Height int
}

// Request is a render request for one of the backends.
// Implemented by TemplateRequest and MarkupRequest.
type Request interface {
	backend() Backend
	Validate() error
}

// Defaults for template requests.
const (
	DefaultTemplate    = raster.DefaultTemplate
	DefaultColorScheme = raster.DefaultScheme
)

// TemplateRequest renders a built-in template.
type TemplateRequest struct {
	Title    string
	Subtitle string   // optional
	Items    []string // list template rows
	Template string   // defaults to DefaultTemplate
	Color    string   // defaults to DefaultColorScheme
}

func (TemplateRequest) backend() Backend { return BackendTemplate }

// Validate checks identifiers and title. Empty identifiers select the defaults.
func (r TemplateRequest) Validate() error {
	r = r.withDefaults()
	if _, err := raster.LookupTemplate(r.Template); err != nil {
		return err
	}
	if _, err := raster.LookupScheme(r.Color); err != nil {
		return err
	}
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

func (r TemplateRequest) withDefaults() TemplateRequest {
	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	if r.Color == "" {
		r.Color = DefaultColorScheme
	}
	return r
}

// MarkupRequest renders a styled document in a headless browser.
// Exactly one of HTMLPath, HTML or Markdown must be set.
type MarkupRequest struct {
	HTMLPath string // local file, loaded as file:// so relative assets resolve
	HTML     string // full document or fragment
	Markdown string // converted to HTML with the embedded cover stylesheet

	// SourceDir resolves relative image paths in Markdown. Optional.
	SourceDir string

	// Style names an embedded or custom stylesheet applied to Markdown.
	// Defaults to the built-in cover style.
	Style string

	// CSS is appended after the stylesheet. Optional.
	CSS string
}

func (MarkupRequest) backend() Backend { return BackendMarkup }

// markupSourceKind names the input a MarkupRequest renders from.
type markupSourceKind int

const (
	sourceNone markupSourceKind = iota
	sourcePath
	sourceHTML
	sourceMarkdown
)

// source returns the single non-blank input, or sourceNone when zero or
// several are set. Whitespace-only fields count as unset.
func (r MarkupRequest) source() markupSourceKind {
	kind := sourceNone
	for k, s := range map[markupSourceKind]string{
		sourcePath:     r.HTMLPath,
		sourceHTML:     r.HTML,
		sourceMarkdown: r.Markdown,
	} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if kind != sourceNone {
			return sourceNone
		}
		kind = k
	}
	return kind
}

// Validate checks that exactly one source is set.
func (r MarkupRequest) Validate() error {
	if r.source() == sourceNone {
		return ErrInvalidMarkup
	}
	return nil
}

// Templates lists the built-in template identifiers.
func Templates() []string { return raster.TemplateIDs() }

// ColorSchemes lists the built-in color scheme identifiers.
func ColorSchemes() []string { return raster.SchemeIDs() }
