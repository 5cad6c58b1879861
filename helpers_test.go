package cover

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-cover/internal/fontresolve"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// goFonts returns a font source backed by the Go fonts, so template renders
// do not depend on host fonts.
func goFonts(t *testing.T) FontSource {
	t.Helper()
	h, err := fontresolve.NewHandle("Go", goregular.TTF, gobold.TTF)
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}
	return fontresolve.Static(h)
}

// solidImage returns a w×h opaque image of c.
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// noiseImage returns a full-size opaque image of random pixels, which PNG
// cannot compress.
func noiseImage(seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- test data
	img := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// pngSize returns the size of img encoded as the compliance layer does.
func pngSize(t *testing.T, img image.Image) int64 {
	t.Helper()
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return int64(buf.Len())
}

// decodeSize returns the dimensions of an encoded image.
func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	return cfg.Width, cfg.Height, format
}
