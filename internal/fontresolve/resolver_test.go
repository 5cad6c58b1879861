package fontresolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// countingLister wraps a Lister and counts List calls.
type countingLister struct {
	inner Lister
	calls atomic.Int32
	err   error
}

func (c *countingLister) List(ctx context.Context) ([]Entry, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.List(ctx)
}

// writeFonts writes the Go fonts to a temp dir and returns their paths.
func writeFonts(t *testing.T) (regular, bold string) {
	t.Helper()
	dir := t.TempDir()
	regular = filepath.Join(dir, "Go-Regular.ttf")
	bold = filepath.Join(dir, "Go-Bold.ttf")
	if err := os.WriteFile(regular, goregular.TTF, 0o600); err != nil {
		t.Fatalf("writing regular font: %v", err)
	}
	if err := os.WriteFile(bold, gobold.TTF, 0o600); err != nil {
		t.Fatalf("writing bold font: %v", err)
	}
	return regular, bold
}

func goEntries(regular, bold string) StaticLister {
	return StaticLister{
		{Families: []string{"DejaVu Sans"}, Styles: []string{"Book"}, Path: "/nonexistent/DejaVuSans.ttf"},
		{Families: []string{"Go"}, Styles: []string{"Bold"}, Path: bold},
		{Families: []string{"Go"}, Styles: []string{"Regular"}, Path: regular},
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	regular, bold := writeFonts(t)
	r := New(
		WithLister(goEntries(regular, bold)),
		WithFamilies("Missing Family", "Go"),
		WithProbe("Aa"),
		WithLogger(zaptest.NewLogger(t)),
	)

	h, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if h.Family != "Go" {
		t.Errorf("Family = %q, want %q", h.Family, "Go")
	}
	if h.Path != regular {
		t.Errorf("Path = %q, want regular face %q", h.Path, regular)
	}
	if !h.HasBold() {
		t.Error("expected a distinct bold face")
	}
	if !h.Covers('A') {
		t.Error("Go Regular should cover 'A'")
	}
	if h.Covers('测') {
		t.Error("Go Regular should not cover CJK")
	}
}

func TestResolver_Memoizes(t *testing.T) {
	t.Parallel()

	regular, bold := writeFonts(t)
	lister := &countingLister{inner: goEntries(regular, bold)}
	r := New(WithLister(lister), WithFamilies("Go"), WithProbe("A"))

	first, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := r.Resolve(context.Background())
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			if h != first {
				t.Error("Resolve() returned a different handle")
			}
		}()
	}
	wg.Wait()

	if got := lister.calls.Load(); got != 1 {
		t.Errorf("lister called %d times, want 1", got)
	}
}

func TestResolver_ConcurrentFirstResolution(t *testing.T) {
	t.Parallel()

	regular, bold := writeFonts(t)
	lister := &countingLister{inner: goEntries(regular, bold)}
	r := New(WithLister(lister), WithFamilies("Go"), WithProbe("A"))

	handles := make([]*Handle, 8)
	var wg sync.WaitGroup
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.Resolve(context.Background())
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for i, h := range handles {
		if h != handles[0] {
			t.Errorf("handle %d differs from handle 0", i)
		}
	}
	if got := lister.calls.Load(); got != 1 {
		t.Errorf("lister called %d times, want 1", got)
	}
}

func TestResolver_FailureNotCached(t *testing.T) {
	t.Parallel()

	lister := &countingLister{inner: StaticLister{}, err: errors.New("fc-list: not installed")}
	r := New(WithLister(lister))

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background())
		if !errors.Is(err, ErrFontNotFound) {
			t.Fatalf("Resolve() error = %v, want %v", err, ErrFontNotFound)
		}
	}
	if got := lister.calls.Load(); got != 2 {
		t.Errorf("lister called %d times, want 2 (failures must not be cached)", got)
	}
}

func TestResolver_NotFound(t *testing.T) {
	t.Parallel()

	regular, bold := writeFonts(t)

	tests := []struct {
		name string
		opts []Option
	}{
		{
			name: "no matching family",
			opts: []Option{WithLister(goEntries(regular, bold)), WithFamilies("PingFang SC")},
		},
		{
			name: "family without CJK glyphs is rejected",
			opts: []Option{WithLister(goEntries(regular, bold)), WithFamilies("Go")},
		},
		{
			name: "empty listing",
			opts: []Option{WithLister(StaticLister{})},
		},
		{
			name: "explicit file without CJK glyphs",
			opts: []Option{WithFontFile(regular, "")},
		},
		{
			name: "explicit file missing",
			opts: []Option{WithFontFile(filepath.Join(t.TempDir(), "missing.ttf"), ""), WithProbe("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.opts...).Resolve(context.Background())
			if !errors.Is(err, ErrFontNotFound) {
				t.Errorf("Resolve() error = %v, want %v", err, ErrFontNotFound)
			}
		})
	}
}

func TestResolver_FontFile(t *testing.T) {
	t.Parallel()

	regular, bold := writeFonts(t)
	r := New(WithFontFile(regular, bold), WithProbe("Hello"))

	h, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if h.Family != "Go-Regular" {
		t.Errorf("Family = %q, want %q", h.Family, "Go-Regular")
	}
	if !h.HasBold() {
		t.Error("expected bold face from explicit bold file")
	}
}

func TestResolver_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithLister(StaticLister{})).Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want %v", err, context.Canceled)
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	h, err := NewHandle("Go", goregular.TTF, nil)
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}

	got, err := Static(h).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != h {
		t.Error("Static resolver should return the given handle")
	}
	if got.HasBold() {
		t.Error("handle without bold data should reuse the regular face")
	}
}

func TestPickStyles(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Styles: []string{"Light"}, Path: "light"},
		{Styles: []string{"Bold"}, Path: "bold"},
		{Styles: []string{"Regular", "標準體"}, Path: "regular"},
		{Styles: []string{"Semibold"}, Path: "semibold"},
	}

	regular, bold := pickStyles(entries)
	if regular.Path != "regular" {
		t.Errorf("regular = %q, want %q", regular.Path, "regular")
	}
	if bold == nil || bold.Path != "semibold" {
		t.Errorf("bold = %v, want semibold", bold)
	}

	regular, bold = pickStyles(entries[:1])
	if regular.Path != "light" {
		t.Errorf("regular fallback = %q, want first entry", regular.Path)
	}
	if bold != nil {
		t.Errorf("bold = %v, want nil", bold)
	}
}

func TestNewHandle_InvalidData(t *testing.T) {
	t.Parallel()

	if _, err := NewHandle("x", nil, nil); !errors.Is(err, ErrFontParse) {
		t.Errorf("NewHandle(nil) error = %v, want %v", err, ErrFontParse)
	}
	if _, err := NewHandle("x", []byte("not a font"), nil); !errors.Is(err, ErrFontParse) {
		t.Errorf("NewHandle(garbage) error = %v, want %v", err, ErrFontParse)
	}
	if _, err := NewHandle("x", []byte("ttcf-garbage"), nil); !errors.Is(err, ErrFontParse) {
		t.Errorf("NewHandle(bad collection) error = %v, want %v", err, ErrFontParse)
	}
}

func TestHandle_Face(t *testing.T) {
	t.Parallel()

	h, err := NewHandle("Go", goregular.TTF, gobold.TTF)
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}

	for _, bold := range []bool{false, true} {
		face, err := h.Face(48, bold)
		if err != nil {
			t.Fatalf("Face(48, %v) error = %v", bold, err)
		}
		if face.Metrics().Height.Ceil() <= 0 {
			t.Errorf("Face(48, %v) has non-positive height", bold)
		}
		_ = face.Close()
	}
}
