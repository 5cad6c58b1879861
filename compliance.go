package cover

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// JPEGQuality is the descending quality ladder tried when PNG is too large.
type JPEGQuality struct {
	Start int
	Step  int
	Min   int // tried last, inclusive
}

// DefaultJPEGQuality starts at 92 and steps down by 5 to a floor of 60.
var DefaultJPEGQuality = JPEGQuality{Start: 92, Step: 5, Min: 60}

var errInvalidQuality = errors.New("invalid JPEG quality ladder")

// Validate checks 1 <= Min <= Start <= 100 and Step >= 1.
func (q JPEGQuality) Validate() error {
	if q.Min < 1 || q.Start > 100 || q.Min > q.Start || q.Step < 1 {
		return fmt.Errorf("%w: start=%d step=%d min=%d", errInvalidQuality, q.Start, q.Step, q.Min)
	}
	return nil
}

// ladder lists the qualities to try, always ending at Min.
func (q JPEGQuality) ladder() []int {
	var out []int
	for v := q.Start; v > q.Min; v -= q.Step {
		out = append(out, v)
	}
	return append(out, q.Min)
}

// Encoded is a compliant image ready to be written.
type Encoded struct {
	Data    []byte
	Format  Format
	Width   int
	Height  int
	Quality int // JPEG quality; 0 for PNG
}

// Compliance enforces the cover dimensions and byte ceiling.
type Compliance struct {
	maxBytes int64
	quality  JPEGQuality
	logger   *zap.Logger
}

// NewCompliance creates a Compliance layer. A nil logger discards logs.
func NewCompliance(maxBytes int64, q JPEGQuality, logger *zap.Logger) *Compliance {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compliance{maxBytes: maxBytes, quality: q, logger: logger}
}

// Normalize resizes the surface to Width×Height and encodes it within the
// byte ceiling: PNG first, then JPEG at decreasing quality.
func (c *Compliance) Normalize(s *Surface) (*Encoded, error) {
	if s == nil || s.Image == nil {
		return nil, fmt.Errorf("%w: empty surface", ErrRender)
	}

	img := s.Image
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		c.logger.Debug("resizing surface",
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
		)
		img = imaging.Resize(img, Width, Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding PNG: %v", ErrRender, err)
	}
	if int64(buf.Len()) <= c.maxBytes {
		return &Encoded{Data: buf.Bytes(), Format: FormatPNG, Width: Width, Height: Height}, nil
	}

	c.logger.Info("PNG exceeds size ceiling, falling back to JPEG",
		zap.Int("bytes", buf.Len()),
		zap.Int64("limit", c.maxBytes),
	)

	flat := flatten(img)
	last := 0
	for _, q := range c.quality.ladder() {
		buf.Reset()
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, fmt.Errorf("%w: encoding JPEG: %v", ErrRender, err)
		}
		last = buf.Len()
		if int64(last) <= c.maxBytes {
			c.logger.Debug("JPEG within ceiling", zap.Int("quality", q), zap.Int("bytes", last))
			return &Encoded{Data: buf.Bytes(), Format: FormatJPEG, Width: Width, Height: Height, Quality: q}, nil
		}
	}

	return nil, fmt.Errorf("%w: %d bytes at JPEG quality %d (limit %d)",
		ErrSizeCompliance, last, c.quality.Min, c.maxBytes)
}

// flatten composites img onto an opaque white canvas.
func flatten(img image.Image) *image.NRGBA {
	bg := imaging.New(Width, Height, color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
