package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-cover/internal/fontresolve"
)

func testFonts(t *testing.T) FontSource {
	t.Helper()
	h, err := fontresolve.NewHandle("Go", goregular.TTF, gobold.TTF)
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}
	return fontresolve.Static(h)
}

type failingFonts struct{ err error }

func (f failingFonts) Resolve(context.Context) (*fontresolve.Handle, error) {
	return nil, f.err
}

func TestEngine_Render_AllTemplatesAndSchemes(t *testing.T) {
	t.Parallel()

	e := New(testFonts(t), WithLogger(zaptest.NewLogger(t)))

	for _, tmpl := range TemplateIDs() {
		for _, scheme := range SchemeIDs() {
			t.Run(tmpl+"/"+scheme, func(t *testing.T) {
				t.Parallel()

				img, err := e.Render(context.Background(), Input{
					Template: tmpl,
					Scheme:   scheme,
					Title:    "Weekend Reading List",
					Subtitle: "Five books | Two essays | One poem",
				})
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				b := img.Bounds()
				if b.Dx() != Width || b.Dy() != Height {
					t.Errorf("bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
				}
			})
		}
	}
}

func TestEngine_Render_Deterministic(t *testing.T) {
	t.Parallel()

	e := New(testFonts(t))
	in := Input{
		Template: "list",
		Scheme:   "cool",
		Title:    "Morning Routine",
		Items:    []string{"Wake early", "Stretch", "Read ten pages"},
	}

	a, err := e.Render(context.Background(), in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := e.Render(context.Background(), in)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	ra, ok := a.(*image.RGBA)
	if !ok {
		t.Fatalf("Render() returned %T, want *image.RGBA", a)
	}
	rb := b.(*image.RGBA)
	if !bytes.Equal(ra.Pix, rb.Pix) {
		t.Error("identical inputs produced different pixels")
	}
}

func TestEngine_Render_Backgrounds(t *testing.T) {
	t.Parallel()

	e := New(testFonts(t))
	warm, _ := LookupScheme("warm")

	tests := []struct {
		template string
		x, y     int
		want     color.RGBA
	}{
		{template: "gradient", x: 0, y: 0, want: warm.GradientTop},
		{template: "gradient", x: 0, y: Height - 1, want: warm.GradientBottom},
		{template: "minimal", x: 0, y: 0, want: warm.Solid},
		{template: "list", x: 0, y: 0, want: warm.Accent},
		{template: "list", x: 0, y: Height - 1, want: warm.Solid},
		{template: "bold", x: 0, y: Height / 2, want: warm.Accent},
		{template: "bold", x: 0, y: 0, want: warm.Solid},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			t.Parallel()

			img, err := e.Render(context.Background(), Input{Template: tt.template, Scheme: "warm", Title: "Hi"})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			got := color.RGBAModel.Convert(img.At(tt.x, tt.y)).(color.RGBA)
			if !near(got, tt.want, 3) {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		diff := int(x) - int(y)
		return diff >= -tol && diff <= tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestEngine_Render_Validation(t *testing.T) {
	t.Parallel()

	e := New(testFonts(t))

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name:    "unknown template",
			in:      Input{Template: "fancy", Scheme: "warm", Title: "x"},
			wantErr: ErrUnknownTemplate,
		},
		{
			name:    "unknown scheme",
			in:      Input{Template: "bold", Scheme: "purple", Title: "x"},
			wantErr: ErrUnknownColorScheme,
		},
		{
			name:    "template checked before scheme",
			in:      Input{Template: "fancy", Scheme: "purple", Title: "x"},
			wantErr: ErrUnknownTemplate,
		},
		{
			name:    "empty template id",
			in:      Input{Scheme: "warm", Title: "x"},
			wantErr: ErrUnknownTemplate,
		},
		{
			name:    "blank title",
			in:      Input{Template: "minimal", Scheme: "warm", Title: " \n\t "},
			wantErr: ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img, err := e.Render(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if img != nil {
				t.Error("Render() returned an image on error")
			}
		})
	}
}

func TestEngine_Render_FontErrorPassesThrough(t *testing.T) {
	t.Parallel()

	e := New(failingFonts{err: fontresolve.ErrFontNotFound})
	_, err := e.Render(context.Background(), Input{Template: "gradient", Scheme: "warm", Title: "x"})
	if !errors.Is(err, fontresolve.ErrFontNotFound) {
		t.Errorf("Render() error = %v, want %v", err, fontresolve.ErrFontNotFound)
	}
}

func TestEngine_Render_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testFonts(t)).Render(ctx, Input{Template: "gradient", Scheme: "warm", Title: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want %v", err, context.Canceled)
	}
}

func TestEngine_OverBudgetTextStaysOnCanvas(t *testing.T) {
	t.Parallel()

	e := New(testFonts(t))
	long := strings.Repeat("An unreasonably long headline that keeps going ", 40)
	items := make([]string, 12)
	for i := range items {
		items[i] = long
	}

	for _, tmpl := range templates {
		t.Run(tmpl.ID, func(t *testing.T) {
			t.Parallel()

			c, err := e.draw(context.Background(), Input{
				Template: tmpl.ID,
				Scheme:   "neutral",
				Title:    long,
				Subtitle: long,
				Items:    items,
			})
			if err != nil {
				t.Fatalf("draw() error = %v", err)
			}

			budgets := map[string]Block{"title": tmpl.Title, "subtitle": tmpl.Subtitle, "item": tmpl.Item}
			seen := map[string]int{}
			var title, subtitle *textBlock
			for i := range c.blocks {
				b := &c.blocks[i]
				seen[b.role]++
				switch b.role {
				case "title":
					title = b
				case "subtitle":
					subtitle = b
				}

				if b.top < 0 || b.bottom > Height {
					t.Errorf("%s block spans y %.0f..%.0f, outside 0..%d", b.role, b.top, b.bottom, Height)
				}
				if b.left < Padding-1 || b.right > Width-Padding+1 {
					t.Errorf("%s block spans x %.0f..%.0f, outside the %dpx margins", b.role, b.left, b.right, Padding)
				}

				budget := budgets[b.role]
				if len(b.lines) != budget.MaxLines {
					t.Errorf("%s lines = %d, want the full budget %d", b.role, len(b.lines), budget.MaxLines)
				}
				if last := b.lines[len(b.lines)-1]; !strings.HasSuffix(last, Ellipsis) {
					t.Errorf("%s last line %q lacks %q", b.role, last, Ellipsis)
				}
			}

			if seen["title"] != 1 {
				t.Fatalf("title blocks = %d, want 1", seen["title"])
			}
			if tmpl.Subtitle.MaxLines > 0 {
				if subtitle == nil {
					t.Fatal("subtitle not drawn")
				}
				if subtitle.top < title.bottom {
					t.Errorf("subtitle top %.0f overlaps title bottom %.0f", subtitle.top, title.bottom)
				}
			}
			if tmpl.Item.MaxLines > 0 && (seen["item"] == 0 || seen["item"] > MaxItems) {
				t.Errorf("item blocks = %d, want 1..%d", seen["item"], MaxItems)
			}
		})
	}
}

func TestEngine_WarnsOnMissingGlyphs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Input
		wantRunes string // "" means no warning
	}{
		{name: "latin only", in: Input{Title: "Weekly Notes", Subtitle: "issue 12"}},
		{name: "cjk title", in: Input{Title: "Notes 测测试"}, wantRunes: "测试"},
		{name: "cjk item", in: Input{Title: "List", Items: []string{"ok", "读书"}}, wantRunes: "读书"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.WarnLevel)
			e := New(testFonts(t), WithLogger(zap.New(core)))
			tt.in.Template, tt.in.Scheme = "list", "cool"
			if _, err := e.Render(context.Background(), tt.in); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			warned := logs.FilterMessage("font lacks glyphs, they render as boxes").All()
			if tt.wantRunes == "" {
				if len(warned) != 0 {
					t.Errorf("unexpected warning: %v", warned[0].ContextMap())
				}
				return
			}
			if len(warned) != 1 {
				t.Fatalf("warnings = %d, want 1", len(warned))
			}
			if got := warned[0].ContextMap()["runes"]; got != tt.wantRunes {
				t.Errorf("runes = %q, want %q", got, tt.wantRunes)
			}
		})
	}
}

func TestTemplates_TitleBlocksFitCanvas(t *testing.T) {
	t.Parallel()

	for _, tmpl := range templates {
		if tmpl.Title.Width > TextAreaWidth {
			t.Errorf("%s: title width %v exceeds text area %d", tmpl.ID, tmpl.Title.Width, TextAreaWidth)
		}
		if tmpl.Title.MaxLines <= 0 {
			t.Errorf("%s: title needs a line budget", tmpl.ID)
		}
	}

	bold, err := LookupTemplate("bold")
	if err != nil {
		t.Fatal(err)
	}
	if bold.Title.Size != 128 {
		t.Errorf("bold title size = %v, want 128", bold.Title.Size)
	}
}

func TestLookupScheme(t *testing.T) {
	t.Parallel()

	s, err := LookupScheme("green")
	if err != nil {
		t.Fatalf("LookupScheme() error = %v", err)
	}
	if s.Accent != (color.RGBA{R: 24, G: 164, B: 140, A: 255}) {
		t.Errorf("green accent = %v", s.Accent)
	}
	if got := SchemeIDs(); strings.Join(got, ",") != "warm,cool,green,neutral" {
		t.Errorf("SchemeIDs() = %v", got)
	}
	if got := TemplateIDs(); strings.Join(got, ",") != "gradient,minimal,list,bold" {
		t.Errorf("TemplateIDs() = %v", got)
	}
}
