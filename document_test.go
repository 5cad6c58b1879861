package cover

// Notes:
// - documentBuilder: we test Markdown wrapping in the document shell with
//   the selected style, inline HTML CSS injection and path rewriting.
// - fileSource: HTMLPath resolution and temp file lifecycle.
// These are acceptable gaps: goldmark output details are tested in pipeline.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-cover/internal/assets"
)

func newTestDocs(t *testing.T) *documentBuilder {
	t.Helper()
	loader, err := assets.NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	d, err := newDocumentBuilder(loader)
	if err != nil {
		t.Fatalf("newDocumentBuilder() error = %v", err)
	}
	return d
}

// ---------------------------------------------------------------------------
// TestDocumentBuilder_Build - Document assembly
// ---------------------------------------------------------------------------

func TestDocumentBuilder_Markdown(t *testing.T) {
	t.Parallel()

	d := newTestDocs(t)
	doc, err := d.Build(context.Background(), MarkupRequest{
		Markdown: "# 周末读书\n\nA ==marked== word.",
		CSS:      ".extra { color: red; }",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>周末读书</title>",
		"width: 1242px; height: 1660px;",
		"<h1",
		"<mark>marked</mark>",
		"linear-gradient",
		".extra { color: red; }",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Index(doc, "linear-gradient") > strings.Index(doc, ".extra") {
		t.Error("extra CSS must follow the stylesheet")
	}
}

func TestDocumentBuilder_Styles(t *testing.T) {
	t.Parallel()

	d := newTestDocs(t)
	ctx := context.Background()

	for _, style := range []string{"cover", "poster", "notebook"} {
		if _, err := d.Build(ctx, MarkupRequest{Markdown: "# x", Style: style}); err != nil {
			t.Errorf("Build(style %q) error = %v", style, err)
		}
	}

	for _, style := range []string{"missing", "../etc/passwd"} {
		if _, err := d.Build(ctx, MarkupRequest{Markdown: "# x", Style: style}); !errors.Is(err, ErrAssetNotFound) {
			t.Errorf("Build(style %q) error = %v, want %v", style, err, ErrAssetNotFound)
		}
	}
}

func TestDocumentBuilder_HTML(t *testing.T) {
	t.Parallel()

	d := newTestDocs(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		req     MarkupRequest
		want    []string
		exclude []string
		wantErr error
	}{
		{
			name: "css injected and paths rewritten",
			req: MarkupRequest{
				HTML:      `<html><head></head><body><img src="bg.png"></body></html>`,
				SourceDir: dir,
				CSS:       "body { margin: 0; }",
			},
			want: []string{
				"<style>body { margin: 0; }</style></head>",
				filepath.ToSlash(filepath.Join(dir, "bg.png")),
			},
		},
		{
			name: "blank html next to markdown uses markdown",
			req:  MarkupRequest{HTML: "   ", Markdown: "# 标题"},
			want: []string{"<h1", "标题"},
		},
		{
			name:    "blank html path next to inline html uses html",
			req:     MarkupRequest{HTMLPath: " \t", HTML: "<p>内容</p>"},
			want:    []string{"<p>内容</p>"},
			exclude: []string{"<h1"},
		},
		{
			name:    "only blank fields",
			req:     MarkupRequest{HTML: " ", Markdown: "\n"},
			wantErr: ErrInvalidMarkup,
		},
		{
			name:    "html and markdown both set",
			req:     MarkupRequest{HTML: "<p>a</p>", Markdown: "# b"},
			wantErr: ErrInvalidMarkup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := d.Build(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(doc, w) {
					t.Errorf("document missing %q:\n%s", w, doc)
				}
			}
			for _, x := range tt.exclude {
				if strings.Contains(doc, x) {
					t.Errorf("document contains %q:\n%s", x, doc)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileSource_Prepare - Local files for the browser
// ---------------------------------------------------------------------------

func TestFileSource_Prepare(t *testing.T) {
	t.Parallel()

	src := &fileSource{docs: newTestDocs(t)}
	ctx := context.Background()

	t.Run("html path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "page.html")
		if err := os.WriteFile(path, []byte("<p>x</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, cleanup, err := src.Prepare(ctx, MarkupRequest{HTMLPath: path})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		cleanup()
		if got != path {
			t.Errorf("Prepare() = %q, want %q", got, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error("cleanup must not remove the caller's file")
		}
	})

	t.Run("blank html path next to markdown", func(t *testing.T) {
		t.Parallel()

		got, cleanup, err := src.Prepare(ctx, MarkupRequest{HTMLPath: " ", Markdown: "# 封面"})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		defer cleanup()
		data, err := os.ReadFile(got)
		if err != nil {
			t.Fatalf("reading prepared file: %v", err)
		}
		if !strings.Contains(string(data), "封面") {
			t.Errorf("prepared file does not hold the Markdown document:\n%s", data)
		}
	})

	t.Run("blank html path alone", func(t *testing.T) {
		t.Parallel()

		_, _, err := src.Prepare(ctx, MarkupRequest{HTMLPath: "  "})
		if !errors.Is(err, ErrInvalidMarkup) {
			t.Errorf("Prepare() error = %v, want %v", err, ErrInvalidMarkup)
		}
	})

	t.Run("missing html path", func(t *testing.T) {
		t.Parallel()

		_, _, err := src.Prepare(ctx, MarkupRequest{HTMLPath: filepath.Join(t.TempDir(), "none.html")})
		if !errors.Is(err, ErrInvalidMarkup) {
			t.Errorf("Prepare() error = %v, want %v", err, ErrInvalidMarkup)
		}
	})

	t.Run("inline markdown uses temp file", func(t *testing.T) {
		t.Parallel()

		path, cleanup, err := src.Prepare(ctx, MarkupRequest{Markdown: "# Temp"})
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil || !strings.Contains(string(data), "<title>Temp</title>") {
			t.Errorf("temp document = %q, %v", data, err)
		}
		cleanup()
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("temp file not removed: %v", err)
		}
	})
}
